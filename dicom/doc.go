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

// Package dicom provides a streaming parser for the metadata of DICOM files.
//
// A Parser reads the optional preamble, the File Meta Information and the main data set of one
// instance through a fixed size buffer, forwarding every decoded DataElement to an AttributeStore
// under the index of the instance. Parsing stops at the Pixel Data element (7FE0,0010); the
// Result reports the absolute offset of its value so that pixel data can be read separately.
// Values and sequences larger than the buffer are decoded chunk by chunk.
//
// The Parse function is the high level API: it parses a single stream into a DataSet. ParseFiles
// parses the files of a series concurrently into one store.
package dicom
