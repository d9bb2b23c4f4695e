package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/liifit/fit"
	"github.com/katalvlaran/liifit/lm"
	"github.com/katalvlaran/liifit/settings"
	"github.com/katalvlaran/liifit/signal"
)

// Version is the document format written by this package.
const Version = 1

// Document is the persisted form of a run.
type Document struct {
	Version  int                       `yaml:"version"`
	RunID    string                    `yaml:"run_id"`
	Group    string                    `yaml:"group,omitempty"`
	Created  time.Time                 `yaml:"created"`
	Mode     string                    `yaml:"mode"`
	Canceled bool                      `yaml:"canceled,omitempty"`
	Params   settings.FitSettings      `yaml:"params"`
	Numeric  settings.NumericSettings  `yaml:"numeric"`
	Modeling settings.ModelingSettings `yaml:"modeling"`
	Problems []Problem                 `yaml:"problems"`
	Checksum uint64                    `yaml:"checksum"`
}

// Problem is one fitted signal.
type Problem struct {
	Key        signal.Key  `yaml:"key"`
	Status     string      `yaml:"status"`
	Reason     string      `yaml:"reason,omitempty"`
	Error      string      `yaml:"error,omitempty"`
	Start      float64     `yaml:"start"`
	Dt         float64     `yaml:"dt"`
	Observed   []float64   `yaml:"observed,flow"`
	Fitted     []float64   `yaml:"fitted,flow,omitempty"`
	Iterations [][]float64 `yaml:"iterations,omitempty"`

	// Warp is the mean per-step DTW distance between Observed and Fitted;
	// Lag is the median warping offset in samples. Both are zero without
	// a fitted trace.
	Warp float64 `yaml:"warp,omitempty"`
	Lag  int     `yaml:"lag,omitempty"`
}

// FromRun snapshots a finished (or idle) run.
func FromRun(run *fit.Run) *Document {
	doc := &Document{
		Version:  Version,
		RunID:    run.ID().String(),
		Group:    run.Name(),
		Created:  run.Created(),
		Mode:     string(run.Mode()),
		Canceled: run.Canceled(),
		Params:   run.Params(),
		Numeric:  run.Numeric(),
		Modeling: run.Modeling(),
	}
	for _, p := range run.Problems() {
		_, y, _ := p.Input()
		start, dt := p.Grid()
		rec := Problem{
			Key:      p.Key(),
			Status:   p.Status().String(),
			Start:    start,
			Dt:       dt,
			Observed: y,
			Fitted:   p.Fitted(),
		}
		if s := p.Status(); s != fit.StatusPending && s != fit.StatusSkipped {
			rec.Reason = p.StopReason().String()
		}
		if err := p.Err(); err != nil {
			rec.Error = err.Error()
		}
		for _, it := range p.History() {
			rec.Iterations = append(rec.Iterations, []float64(it))
		}
		rec.Warp, rec.Lag = warp(rec.Observed, rec.Fitted)
		doc.Problems = append(doc.Problems, rec)
	}
	doc.Checksum = doc.Sum()

	return doc
}

// warp aligns the fitted trace against the observation inside a band of a
// tenth of the trace length.
func warp(observed, fitted []float64) (float64, int) {
	if len(fitted) == 0 || len(fitted) != len(observed) {
		return 0, 0
	}
	al, err := signal.Warp(observed, fitted, signal.WarpOptions{
		Band: max(len(observed)/10, 1),
		Path: true,
	})
	if err != nil || math.IsInf(al.Distance, 1) {
		return 0, 0
	}

	return al.Mean(len(observed)), al.Lag()
}

// Sum returns the xxhash64 of the document's identity and numeric content.
// The Checksum field itself is not covered.
func (d *Document) Sum() uint64 {
	h := xxhash.New()
	var buf [8]byte
	putF := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	putS := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	putN := func(n int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		_, _ = h.Write(buf[:])
	}

	putN(d.Version)
	putS(d.RunID)
	putS(d.Mode)
	for _, p := range d.Params.Params {
		putN(int(p.ID))
		putF(p.Value)
		putF(p.Lower)
		putF(p.Upper)
	}
	putN(len(d.Problems))
	for _, p := range d.Problems {
		putS(p.Key.String())
		putS(p.Status)
		putF(p.Start)
		putF(p.Dt)
		putN(len(p.Observed))
		for _, v := range p.Observed {
			putF(v)
		}
		putN(len(p.Fitted))
		for _, v := range p.Fitted {
			putF(v)
		}
		putN(len(p.Iterations))
		for _, it := range p.Iterations {
			putN(len(it))
			for _, v := range it {
				putF(v)
			}
		}
	}

	return h.Sum64()
}

// Histories returns the iteration records per signal.
func (d *Document) Histories() map[signal.Key][]lm.IterationResult {
	out := make(map[signal.Key][]lm.IterationResult, len(d.Problems))
	for _, p := range d.Problems {
		hist := make([]lm.IterationResult, len(p.Iterations))
		for i, it := range p.Iterations {
			hist[i] = lm.IterationResult(append([]float64(nil), it...))
		}
		out[p.Key] = hist
	}

	return out
}

// Best returns the last iteration of problem i, or nil.
func (p *Problem) Best() lm.IterationResult {
	if len(p.Iterations) == 0 {
		return nil
	}

	return lm.IterationResult(p.Iterations[len(p.Iterations)-1])
}

// Encode writes doc as YAML through the codec for c.
func Encode(w io.Writer, doc *Document, c Compression) error {
	codec, err := CodecFor(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err = enc.Encode(doc); err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if err = enc.Close(); err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	payload, err := codec.Compress(buf.Bytes())
	if err != nil {
		return fmt.Errorf("store: compress: %w", err)
	}
	_, err = w.Write(payload)

	return err
}

// Decode reads a document, detecting the compression, and verifies the
// version and checksum.
func Decode(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("store: read: %w", err)
	}
	codec, err := CodecFor(Detect(raw))
	if err != nil {
		return nil, err
	}
	plain, err := codec.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("store: decompress: %w", err)
	}
	var doc Document
	if err = yaml.Unmarshal(plain, &doc); err != nil {
		return nil, fmt.Errorf("store: decode: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, doc.Version)
	}
	if sum := doc.Sum(); sum != doc.Checksum {
		return nil, fmt.Errorf("%w: stored %x, computed %x", ErrChecksum, doc.Checksum, sum)
	}

	return &doc, nil
}

// Save writes doc to path, compressed according to the extension.
func Save(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err = Encode(f, doc, CompressionFor(path)); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

// Load reads a document from path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	defer f.Close()

	return Decode(f)
}
