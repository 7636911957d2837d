// Package sampleapp is a small web application used as the system under test by the bundled
// suite. It keeps widgets, search results and a few associated models in memory, and serves
// them as HTML or JSON.
package sampleapp

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// ValidationError lists the reasons a record could not be saved.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

// ErrNotFound is returned when a record id is not in the store.
var ErrNotFound = errors.New("record not found")

type Widget struct {
	ID      int
	Name    string
	Feature string
}

// Persisted is true for a widget that was saved and given an id.
func (w Widget) Persisted() bool {
	return w.ID != 0
}

type Result struct {
	ID   int
	Name string
}

// MyModel belongs to a Baz when BazID is nonzero.
type MyModel struct {
	ID    int
	Foo   string
	BazID int
}

type MyModel2 struct {
	ID   int
	Name string
}

type Bar struct {
	ID        int
	MyModelID int
}

type Baz struct {
	ID int
}

// Store is an in-memory database. All methods are safe for concurrent use.
type Store struct {
	widgets  []Widget
	results  []Result
	myModels map[int]MyModel
	models2  map[int]MyModel2
	bars     map[int]Bar
	bazzes   map[int]Baz
	lastID   int
	lock     sync.Mutex
}

func NewStore() *Store {
	return &Store{
		myModels: make(map[int]MyModel),
		models2:  make(map[int]MyModel2),
		bars:     make(map[int]Bar),
		bazzes:   make(map[int]Baz),
	}
}

func (s *Store) nextID() int {
	s.lastID++
	return s.lastID
}

// CreateWidget validates and saves a widget. On a validation error the unsaved widget is
// returned along with the error.
func (s *Store) CreateWidget(w Widget) (Widget, error) {
	if strings.TrimSpace(w.Name) == "" {
		w.ID = 0
		return w, &ValidationError{Messages: []string{"name can't be blank"}}
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	w.ID = s.nextID()
	s.widgets = append(s.widgets, w)
	return w, nil
}

func (s *Store) Widgets() []Widget {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Widget(nil), s.widgets...)
}

func (s *Store) CreateResult(r Result) (Result, error) {
	if strings.TrimSpace(r.Name) == "" {
		return r, &ValidationError{Messages: []string{"name can't be blank"}}
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	r.ID = s.nextID()
	s.results = append(s.results, r)
	return r, nil
}

// Search returns the results whose name contains the query, ignoring case. An empty query
// matches nothing.
func (s *Store) Search(query string) []Result {
	fold := cases.Fold()
	query = fold.String(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	var ret []Result
	for _, r := range s.results {
		if strings.Contains(fold.String(r.Name), query) {
			ret = append(ret, r)
		}
	}
	return ret
}

func (s *Store) CreateMyModel(m MyModel) (MyModel, error) {
	if strings.TrimSpace(m.Foo) == "" {
		return m, &ValidationError{Messages: []string{"foo can't be blank"}}
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.bazzes[m.BazID]; m.BazID != 0 && !ok {
		return m, fmt.Errorf("my_model refers to baz %d: %w", m.BazID, ErrNotFound)
	}
	m.ID = s.nextID()
	s.myModels[m.ID] = m
	return m, nil
}

func (s *Store) CreateMyModel2(m MyModel2) (MyModel2, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	m.ID = s.nextID()
	s.models2[m.ID] = m
	return m, nil
}

// BazOf returns the baz a model belongs to.
func (s *Store) BazOf(myModelID int) (Baz, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	m, ok := s.myModels[myModelID]
	if !ok {
		return Baz{}, fmt.Errorf("my_model %d: %w", myModelID, ErrNotFound)
	}
	b, ok := s.bazzes[m.BazID]
	if !ok {
		return Baz{}, fmt.Errorf("baz of my_model %d: %w", myModelID, ErrNotFound)
	}
	return b, nil
}

// CreateBar saves a bar. A bar with a zero MyModelID belongs to no model.
func (s *Store) CreateBar(b Bar) (Bar, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.myModels[b.MyModelID]; b.MyModelID != 0 && !ok {
		return b, fmt.Errorf("bar refers to my_model %d: %w", b.MyModelID, ErrNotFound)
	}
	b.ID = s.nextID()
	s.bars[b.ID] = b
	return b, nil
}

func (s *Store) CreateBaz(b Baz) (Baz, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	b.ID = s.nextID()
	s.bazzes[b.ID] = b
	return b, nil
}

func (s *Store) BazzesCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.bazzes)
}

func (s *Store) BarCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.bars)
}

// BarsOf returns the bars that belong to a model, ordered by id.
func (s *Store) BarsOf(myModelID int) []Bar {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.barsOf(myModelID)
}

func (s *Store) barsOf(myModelID int) []Bar {
	var ret []Bar
	for _, b := range s.bars {
		if b.MyModelID == myModelID {
			ret = append(ret, b)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

// BoomHalfBars deletes the first half (rounded down) of a model's bars and returns the deleted
// ones.
func (s *Store) BoomHalfBars(myModelID int) ([]Bar, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.myModels[myModelID]; !ok {
		return nil, fmt.Errorf("my_model %d: %w", myModelID, ErrNotFound)
	}
	bars := s.barsOf(myModelID)
	destroyed := bars[:len(bars)/2]
	for _, b := range destroyed {
		delete(s.bars, b.ID)
	}
	return destroyed, nil
}

// FindMyModel reads a model back from the store, the way a reload would.
func (s *Store) FindMyModel(id int) (MyModel, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	m, ok := s.myModels[id]
	if !ok {
		return MyModel{}, fmt.Errorf("my_model %d: %w", id, ErrNotFound)
	}
	return m, nil
}
