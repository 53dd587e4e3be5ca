package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"lawgpt-backend/models"
)

// fakeEmbedder returns a short deterministic vector per input and fails on
// any text containing the failOn marker.
type fakeEmbedder struct {
	mu         sync.Mutex
	docCalls   []string
	queryCalls []string
	failOn     string
}

func (f *fakeEmbedder) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, fmt.Errorf("embedding rejected")
	}
	f.docCalls = append(f.docCalls, text)
	return vectorFor(text), nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, fmt.Errorf("embedding rejected")
	}
	f.queryCalls = append(f.queryCalls, text)
	return vectorFor(text), nil
}

func vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 1, 0}
}

type upsertCall struct {
	collection string
	points     []models.IndexPoint
}

// countOutcome is one queued PointCount reply; once the queue drains, the
// live count is returned.
type countOutcome struct {
	n   uint64
	err error
}

// fakeStore records writes in memory and keeps a live point count so
// multi-file ingestion sees the collection grow between files.
type fakeStore struct {
	mu              sync.Mutex
	ensured         []string
	upserts         []upsertCall
	upsertErr       error
	searchHits      []models.ScoredPoint
	searchErr       error
	lastSearchLimit uint64
	pointCount      uint64
	countQueue      []countOutcome
	deleteErr       error
	deleted         []string
}

func (f *fakeStore) EnsureCollection(_ context.Context, name string, _ uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, name)
	return nil
}

func (f *fakeStore) UpsertPoints(_ context.Context, collection string, points []models.IndexPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, upsertCall{collection: collection, points: points})
	f.pointCount += uint64(len(points))
	return nil
}

func (f *fakeStore) Search(_ context.Context, _ string, _ []float32, limit uint64) ([]models.ScoredPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSearchLimit = limit
	return f.searchHits, f.searchErr
}

func (f *fakeStore) PointCount(_ context.Context, _ string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.countQueue) > 0 {
		next := f.countQueue[0]
		f.countQueue = f.countQueue[1:]
		return next.n, next.err
	}
	return f.pointCount, nil
}

func (f *fakeStore) GetCollectionInfo(_ context.Context, name string) (models.CollectionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.CollectionInfo{Name: name, PointsCount: f.pointCount, Status: "Green"}, nil
}

func (f *fakeStore) DeleteCollection(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	return nil
}

// allPointIDs flattens uploaded point IDs in write order.
func (f *fakeStore) allPointIDs() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uint64
	for _, call := range f.upserts {
		for _, p := range call.points {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// fakeSource serves batch files from memory; unknown paths report
// fs.ErrNotExist like a real filesystem. A path listed in vanishAfter
// disappears once it has been opened that many times, which simulates a
// file lost between ingestion and the ID-estimate re-read.
type fakeSource struct {
	mu          sync.Mutex
	files       map[string]string
	vanishAfter map[string]int
	opens       map[string]int
}

func (f *fakeSource) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	if f.opens == nil {
		f.opens = make(map[string]int)
	}
	f.opens[path]++
	if limit, limited := f.vanishAfter[path]; limited && f.opens[path] > limit {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader([]byte(content))), nil
}

func casesJSON(n int) string {
	cases := make([]models.CaseRecord, n)
	for i := range cases {
		cases[i] = models.CaseRecord{
			CaseTitle:   fmt.Sprintf("State vs Appellant %03d", i),
			Division:    "Appellate Division",
			LawCategory: "Criminal",
			LawAct:      "Penal Code 1860",
			Reference:   fmt.Sprintf("%d DLR %d", 70+i%10, i),
			CaseDetails: fmt.Sprintf("Case %03d concerns an appeal against conviction.", i),
		}
	}
	data, _ := json.Marshal(cases)
	return string(data)
}

func lawsJSON(laws []models.LawRecord) string {
	data, _ := json.Marshal(laws)
	return string(data)
}

func shortLaw(i int) models.LawRecord {
	return models.LawRecord{
		PartSection: fmt.Sprintf("Part %d, Section %d", i/10+1, i),
		LawText:     fmt.Sprintf("Section %03d: whoever contravenes this provision commits an offence.", i),
	}
}
