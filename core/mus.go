// Copyright 2025 The Recall Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain types. These are hand-maintained; field
// order is part of the stored format, so new fields must be appended and
// existing order preserved.

var (
	strSliceMUS = ord.NewSliceSer[string](ord.String)
	f32SliceMUS = ord.NewSliceSer[float32](varint.Float32)
	strMapMUS   = ord.NewMapSer[string, string](ord.String, ord.String)
)

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

// StatusMUS serializes document Status values.
var StatusMUS = statusMUS{}

type statusMUS struct{}

func (statusMUS) Marshal(s Status, bs []byte) (n int) {
	return varint.Int.Marshal(int(s), bs)
}

func (statusMUS) Unmarshal(bs []byte) (s Status, n int, err error) {
	v, n, err := varint.Int.Unmarshal(bs)
	return Status(v), n, err
}

func (statusMUS) Size(s Status) (size int) {
	return varint.Int.Size(int(s))
}

// JobStatusMUS serializes JobStatus values.
var JobStatusMUS = jobStatusMUS{}

type jobStatusMUS struct{}

func (jobStatusMUS) Marshal(s JobStatus, bs []byte) (n int) {
	return varint.Int.Marshal(int(s), bs)
}

func (jobStatusMUS) Unmarshal(bs []byte) (s JobStatus, n int, err error) {
	v, n, err := varint.Int.Unmarshal(bs)
	return JobStatus(v), n, err
}

func (jobStatusMUS) Size(s JobStatus) (size int) {
	return varint.Int.Size(int(s))
}

// optional time: a presence flag followed by the timestamp when present.
// Zero times round-trip as zero.

func marshalOptTime(t time.Time, bs []byte) (n int) {
	present := !t.IsZero()
	n = ord.Bool.Marshal(present, bs)
	if present {
		n += raw.TimeUnixMicroUTC.Marshal(t, bs[n:])
	}
	return n
}

func unmarshalOptTime(bs []byte) (t time.Time, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return time.Time{}, n, err
	}
	var n1 int
	t, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	return t, n, err
}

func sizeOptTime(t time.Time) (size int) {
	size = ord.Bool.Size(!t.IsZero())
	if !t.IsZero() {
		size += raw.TimeUnixMicroUTC.Size(t)
	}
	return size
}

// DocumentMUS serializes Document values.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.TenantID, bs[n:])
	n += ord.String.Marshal(d.UserID, bs[n:])
	n += ord.String.Marshal(d.CustomID, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.URL, bs[n:])
	n += ord.String.Marshal(d.Content, bs[n:])
	n += ord.String.Marshal(d.Summary, bs[n:])
	n += strSliceMUS.Marshal(d.Tags, bs[n:])
	n += strMapMUS.Marshal(d.Metadata, bs[n:])
	n += ord.String.Marshal(d.PreviewImageURL, bs[n:])
	n += StatusMUS.Marshal(d.Status, bs[n:])
	n += ord.String.Marshal(string(d.Type), bs[n:])
	n += strSliceMUS.Marshal(d.ContainerTags, bs[n:])
	n += ord.String.Marshal(d.ContentHash, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(d.CreatedAt, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(d.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	if d.Id, n1, err = IDMUS.Unmarshal(bs); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.TenantID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.UserID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.CustomID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.URL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Tags, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Metadata, n1, err = strMapMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.PreviewImageURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Status, n1, err = StatusMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	var typ string
	if typ, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Type = DocumentType(typ)
	n += n1
	if d.ContainerTags, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.ContentHash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.CreatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.UpdatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	return d, n, nil
}

func (documentMUS) Size(d Document) (size int) {
	size = IDMUS.Size(d.Id)
	size += ord.String.Size(d.TenantID)
	size += ord.String.Size(d.UserID)
	size += ord.String.Size(d.CustomID)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.URL)
	size += ord.String.Size(d.Content)
	size += ord.String.Size(d.Summary)
	size += strSliceMUS.Size(d.Tags)
	size += strMapMUS.Size(d.Metadata)
	size += ord.String.Size(d.PreviewImageURL)
	size += StatusMUS.Size(d.Status)
	size += ord.String.Size(string(d.Type))
	size += strSliceMUS.Size(d.ContainerTags)
	size += ord.String.Size(d.ContentHash)
	size += raw.TimeUnixMicroUTC.Size(d.CreatedAt)
	size += raw.TimeUnixMicroUTC.Size(d.UpdatedAt)
	return size
}

// DocumentChunkMUS serializes DocumentChunk values.
var DocumentChunkMUS = documentChunkMUS{}

type documentChunkMUS struct{}

func (documentChunkMUS) Marshal(c DocumentChunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += IDMUS.Marshal(c.DocumentID, bs[n:])
	n += ord.String.Marshal(c.Content, bs[n:])
	n += varint.Int.Marshal(c.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(c.CharStart, bs[n:])
	n += varint.Int.Marshal(c.CharEnd, bs[n:])
	n += f32SliceMUS.Marshal(c.Embedding, bs[n:])
	n += ord.String.Marshal(c.EmbeddingModel, bs[n:])
	n += varint.Int.Marshal(c.TokenCount, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(c.CreatedAt, bs[n:])
	return n
}

func (documentChunkMUS) Unmarshal(bs []byte) (c DocumentChunk, n int, err error) {
	var n1 int
	if c.Id, n1, err = IDMUS.Unmarshal(bs); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.DocumentID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.CharStart, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.CharEnd, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Embedding, n1, err = f32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.EmbeddingModel, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.TokenCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.CreatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (documentChunkMUS) Size(c DocumentChunk) (size int) {
	size = IDMUS.Size(c.Id)
	size += IDMUS.Size(c.DocumentID)
	size += ord.String.Size(c.Content)
	size += varint.Int.Size(c.ChunkIndex)
	size += varint.Int.Size(c.CharStart)
	size += varint.Int.Size(c.CharEnd)
	size += f32SliceMUS.Size(c.Embedding)
	size += ord.String.Size(c.EmbeddingModel)
	size += varint.Int.Size(c.TokenCount)
	size += raw.TimeUnixMicroUTC.Size(c.CreatedAt)
	return size
}

// IngestionJobMUS serializes IngestionJob values.
var IngestionJobMUS = ingestionJobMUS{}

type ingestionJobMUS struct{}

func (ingestionJobMUS) Marshal(j IngestionJob, bs []byte) (n int) {
	n = IDMUS.Marshal(j.Id, bs)
	n += IDMUS.Marshal(j.DocumentID, bs[n:])
	n += JobStatusMUS.Marshal(j.Status, bs[n:])
	n += ord.String.Marshal(j.ErrorMessage, bs[n:])
	n += ord.Bool.Marshal(j.RollbackIncomplete, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(j.CreatedAt, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(j.UpdatedAt, bs[n:])
	n += marshalOptTime(j.CompletedAt, bs[n:])
	return n
}

func (ingestionJobMUS) Unmarshal(bs []byte) (j IngestionJob, n int, err error) {
	var n1 int
	if j.Id, n1, err = IDMUS.Unmarshal(bs); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.DocumentID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.Status, n1, err = JobStatusMUS.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.RollbackIncomplete, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.CreatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.UpdatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.CompletedAt, n1, err = unmarshalOptTime(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	return j, n, nil
}

func (ingestionJobMUS) Size(j IngestionJob) (size int) {
	size = IDMUS.Size(j.Id)
	size += IDMUS.Size(j.DocumentID)
	size += JobStatusMUS.Size(j.Status)
	size += ord.String.Size(j.ErrorMessage)
	size += ord.Bool.Size(j.RollbackIncomplete)
	size += raw.TimeUnixMicroUTC.Size(j.CreatedAt)
	size += raw.TimeUnixMicroUTC.Size(j.UpdatedAt)
	size += sizeOptTime(j.CompletedAt)
	return size
}

// MemoryMUS serializes Memory values.
var MemoryMUS = memoryMUS{}

type memoryMUS struct{}

func (memoryMUS) Marshal(m Memory, bs []byte) (n int) {
	n = IDMUS.Marshal(m.Id, bs)
	n += IDMUS.Marshal(m.SourceDocumentID, bs[n:])
	n += ord.String.Marshal(m.TenantID, bs[n:])
	n += ord.String.Marshal(m.UserID, bs[n:])
	n += ord.String.Marshal(m.Content, bs[n:])
	n += ord.String.Marshal(m.Type, bs[n:])
	n += strSliceMUS.Marshal(m.Tags, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(m.CreatedAt, bs[n:])
	return n
}

func (memoryMUS) Unmarshal(bs []byte) (m Memory, n int, err error) {
	var n1 int
	if m.Id, n1, err = IDMUS.Unmarshal(bs); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.SourceDocumentID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.TenantID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.UserID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Type, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Tags, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.CreatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	return m, n, nil
}

func (memoryMUS) Size(m Memory) (size int) {
	size = IDMUS.Size(m.Id)
	size += IDMUS.Size(m.SourceDocumentID)
	size += ord.String.Size(m.TenantID)
	size += ord.String.Size(m.UserID)
	size += ord.String.Size(m.Content)
	size += ord.String.Size(m.Type)
	size += strSliceMUS.Size(m.Tags)
	size += raw.TimeUnixMicroUTC.Size(m.CreatedAt)
	return size
}
