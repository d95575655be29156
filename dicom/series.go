// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dicom

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParseFiles parses the files of a series concurrently into store, the file names[i] into index i.
// WithIndex is ignored. The first failure cancels the files not yet started; the results of the
// files parsed so far are returned along with the error.
func ParseFiles(ctx context.Context, names []string, store AttributeStore, opts ...ParseOption) ([]Result, error) {
	results := make([]Result, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := NewParser(store, append(opts[:len(opts):len(opts)], WithIndex(i))...)
			res, err := p.Update(name)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}

	return results, g.Wait()
}
