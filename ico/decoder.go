package ico

import (
	"fmt"
	"io"
	"math"

	"github.com/apex/log"
)

// DefaultMaxSize bounds how much a Decoder buffers from a reader.
const DefaultMaxSize = 64 << 20

// Decoder holds decoding options. The zero value is ready to use.
type Decoder struct {
	// Log receives a debug entry for every decoded image and for oddities
	// in the input that decoding tolerates. Defaults to log.Log.
	Log log.Interface

	// MaxSize caps the input accepted by Read. Defaults to DefaultMaxSize.
	MaxSize int64
}

func (d *Decoder) logger() log.Interface {
	if d.Log == nil {
		return log.Log
	}
	return d.Log
}

// Read buffers r and decodes it.
func (d *Decoder) Read(r io.Reader) (*Collection, error) {
	limit := d.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	if limit == math.MaxInt64 {
		limit--
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, formatErrorf("file larger than %d bytes", limit)
	}
	return d.Decode(data)
}

// Decode parses data. The returned collection does not share memory with
// data.
func (d *Decoder) Decode(data []byte) (*Collection, error) {
	typ, records, err := parseDirectory(data)
	if err != nil {
		return nil, err
	}
	c := &Collection{typ: typ, entries: make([]*Entry, 0, len(records))}
	for i := range records {
		e, err := d.decodeEntry(typ, i, &records[i])
		if err != nil {
			return nil, err
		}
		c.entries = append(c.entries, e)
	}
	d.logger().WithFields(log.Fields{
		"type":    typ.String(),
		"entries": len(c.entries),
		"bytes":   len(data),
	}).Debug("decoded collection")
	return c, nil
}

func (d *Decoder) decodeEntry(typ ResourceType, i int, rec *record) (*Entry, error) {
	ctx := d.logger().WithFields(log.Fields{
		"index":  i,
		"offset": rec.ImageOffset,
		"size":   rec.BytesInRes,
	})
	e := &Entry{}
	if typ == Cursor {
		e.hotspot = &Hotspot{X: rec.Planes, Y: rec.BitCount}
	}

	if isPNG(rec.data) {
		w, h, err := pngSize(rec.data)
		if err == nil {
			err = checkDimensions(w, h)
		}
		if err != nil {
			return nil, entryError(i, err)
		}
		e.width, e.height = w, h
		e.format = FormatPNG
		e.png = append([]byte(nil), rec.data...)
	} else {
		bm, err := decodeDIB(rec.data)
		if err != nil {
			return nil, entryError(i, err)
		}
		if typ == Icon {
			switch {
			case rec.BitCount == 0:
				ctx.Debug("directory bit count is 0, using bitmap header")
			case Depth(rec.BitCount) != bm.depth:
				return nil, formatErrorf("entry %d: directory says %d bits per pixel, bitmap has %d", i, rec.BitCount, int(bm.depth))
			}
		}
		if bm.maskMissing {
			ctx.Debug("32bpp bitmap has no AND mask")
		}
		e.width, e.height = bm.width, bm.height
		e.format = FormatBMP
		e.depth = bm.depth
		e.rgba = bm.rgba
	}

	// Directory dimensions are often wrong in the wild; the payload wins.
	if w, h := dimension(rec.Width), dimension(rec.Height); w != e.width || h != e.height {
		ctx.WithFields(log.Fields{
			"directoryWidth":  w,
			"directoryHeight": h,
		}).Debug("ignoring directory dimensions")
	}
	if n := e.ColorCount(); int(rec.ColorCount) != n%256 {
		ctx.WithField("colorCount", rec.ColorCount).Debug("ignoring directory colour count")
	}
	ctx.WithFields(log.Fields{
		"format": e.format.String(),
		"width":  e.width,
		"height": e.height,
		"depth":  int(e.Depth()),
	}).Debug("decoded entry")
	return e, nil
}

// entryError puts err in the context of entry i. Problems with the entry
// itself are format errors here, since they come from the file.
func entryError(i int, err error) error {
	switch err := err.(type) {
	case FormatError:
		return formatErrorf("entry %d: %s", i, string(err))
	case InvalidEntryError:
		return formatErrorf("entry %d: %s", i, string(err))
	}
	return fmt.Errorf("entry %d: %w", i, err)
}
