package core

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for stored entities. Field order is part of
// the on-disk format; append new fields at the end only.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// DocumentMUS serializes Document values.
// Timestamps are stored as microsecond Unix times.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.Content, bs[n:])
	n += ord.String.Marshal(d.BriefSummary, bs[n:])
	n += varint.Int.Marshal(len(d.Metadata), bs[n:])
	for _, k := range slices.Sorted(maps.Keys(d.Metadata)) {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(d.Metadata[k], bs[n:])
	}
	n += ord.String.Marshal(d.Namespace, bs[n:])
	n += ord.String.Marshal(string(d.DocumentType), bs[n:])
	n += ord.String.Marshal(d.Source, bs[n:])
	n += ord.String.Marshal(d.ProjectPath, bs[n:])
	n += varint.Int.Marshal(len(d.Vector), bs[n:])
	for _, v := range d.Vector {
		n += varint.Float32.Marshal(v, bs[n:])
	}
	n += varint.Int64.Marshal(d.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(d.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var m int
	if d.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if d.Content, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.BriefSummary, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	var count int
	if count, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if count < 0 {
		return d, n, fmt.Errorf("%w: negative metadata length", ErrMalformedData)
	}
	if count > 0 {
		d.Metadata = make(map[string]string, count)
	}
	for i := 0; i < count; i++ {
		var k, v string
		if k, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return d, n + m, err
		}
		n += m
		if v, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return d, n + m, err
		}
		n += m
		d.Metadata[k] = v
	}
	if d.Namespace, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	var dt string
	if dt, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	d.DocumentType = DocumentType(dt)
	if d.Source, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if d.ProjectPath, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if count, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	if count < 0 {
		return d, n, fmt.Errorf("%w: negative vector length", ErrMalformedData)
	}
	if count > 0 {
		d.Vector = make([]float32, count)
	}
	for i := 0; i < count; i++ {
		if d.Vector[i], m, err = varint.Float32.Unmarshal(bs[n:]); err != nil {
			return d, n + m, err
		}
		n += m
	}
	var ts int64
	if ts, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	d.CreatedAt = time.UnixMicro(ts).UTC()
	if ts, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return d, n + m, err
	}
	n += m
	d.UpdatedAt = time.UnixMicro(ts).UTC()
	return d, n, nil
}

func (documentMUS) Size(d Document) (size int) {
	size = IDMUS.Size(d.Id)
	size += ord.String.Size(d.Content)
	size += ord.String.Size(d.BriefSummary)
	size += varint.Int.Size(len(d.Metadata))
	for k, v := range d.Metadata {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	size += ord.String.Size(d.Namespace)
	size += ord.String.Size(string(d.DocumentType))
	size += ord.String.Size(d.Source)
	size += ord.String.Size(d.ProjectPath)
	size += varint.Int.Size(len(d.Vector))
	for _, v := range d.Vector {
		size += varint.Float32.Size(v)
	}
	size += varint.Int64.Size(d.CreatedAt.UnixMicro())
	size += varint.Int64.Size(d.UpdatedAt.UnixMicro())
	return size
}
