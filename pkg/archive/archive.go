// Package archive reads and writes the season archive: the category points of
// every racer and the zero factors of a season.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/pkg/model"
)

var (
	// ErrArchiveNotFound is returned if no archive exists for a season.
	ErrArchiveNotFound  = errors.New("season archive not found")
	ErrMalformedArchive = errors.New("malformed season archive")
)

// Store persists season archives.
type Store interface {
	// Load returns the normalized archive of season.
	Load(ctx context.Context, season int) (*model.Archive, error)
	Save(ctx context.Context, season int, a *model.Archive) error
}

const indent = 4

var zeroesPath = jp.C(model.ZeroesKey)

// Decode parses an archive document. Scores may be given as strings or
// numbers. The zero factors are mandatory. The result is normalized.
func Decode(r io.Reader) (*model.Archive, error) {
	data, err := oj.Load(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedArchive, err)
	}
	doc, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected object", ErrMalformedArchive)
	}
	ret := model.NewArchive()
	zeroes := zeroesPath.First(doc)
	if zeroes == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedArchive, model.ZeroesKey)
	}
	if ret.Zeroes, err = decodeScores(zeroes); err != nil {
		return nil, fmt.Errorf("%s: %w", model.ZeroesKey, err)
	}
	for name, v := range doc {
		if name == model.ZeroesKey {
			continue
		}
		if ret.Racers[name], err = decodeScores(v); err != nil {
			return nil, fmt.Errorf("racer %s: %w", name, err)
		}
	}
	return ret.Normalize(), nil
}

func decodeScores(v any) (model.Scores, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected object, got %T", ErrMalformedArchive, v)
	}
	ret := make(model.Scores, len(obj))
	for key, raw := range obj {
		c, err := model.ParseCategory(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedArchive, err)
		}
		d, err := decodeDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedArchive, key, err)
		}
		ret[c] = d
	}
	return ret, nil
}

func decodeDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(val))
	case int64:
		return decimal.NewFromInt(val), nil
	case float64:
		return decimal.NewFromFloat(val), nil
	case fmt.Stringer:
		return decimal.NewFromString(val.String())
	default:
		return decimal.Zero, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

// Encode writes the archive as json document. Scores are written as strings
// to keep the exact decimal representation.
func Encode(w io.Writer, a *model.Archive) error {
	encodeScores := func(s model.Scores) map[string]any {
		ret := make(map[string]any, len(s))
		for c, v := range s {
			ret[c.String()] = v.String()
		}
		return ret
	}
	doc := make(map[string]any, len(a.Racers)+1)
	for name, s := range a.Racers {
		doc[name] = encodeScores(s)
	}
	doc[model.ZeroesKey] = encodeScores(a.Zeroes)
	return oj.Write(w, doc, &oj.Options{Indent: indent, Sort: true})
}
