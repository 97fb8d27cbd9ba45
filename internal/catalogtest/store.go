package catalogtest

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odpi/egeria-sub150/pkg/api"
)

// storeError carries the HTTP status and exception class reported for a rejected request
type storeError struct {
	status    int
	exception string
	message   string
}

func (e *storeError) Error() string {
	return e.message
}

func invalidParameter(status int, format string, args ...any) *storeError {
	return &storeError{status: status, exception: invalidParameterException, message: fmt.Sprintf(format, args...)}
}

type element struct {
	header     api.ElementHeader
	collection string
	properties map[string]any
	seq        uint64
}

func (e *element) stub() api.ElementStub {
	name, _ := e.properties["qualifiedName"].(string)
	return api.ElementStub{GUID: e.header.GUID, TypeName: e.header.TypeName, UniqueName: name}
}

type relationship struct {
	guid       string
	name       string
	collection string
	primary    string
	secondary  string
	properties map[string]any
	seq        uint64
}

// store is the in-memory catalog behind the fake server
type store struct {
	mu            sync.RWMutex
	elements      map[string]*element
	relationships map[string]*relationship
	seq           uint64
	now           func() time.Time
}

func newStore() *store {
	return &store{
		elements:      make(map[string]*element),
		relationships: make(map[string]*relationship),
		now:           time.Now,
	}
}

func (s *store) next() uint64 {
	s.seq++
	return s.seq
}

func (s *store) qualifiedNameTaken(name, except string) bool {
	for guid, e := range s.elements {
		if guid != except && e.properties["qualifiedName"] == name {
			return true
		}
	}
	return false
}

func (s *store) addElement(guid, collection, anchorGUID string, props map[string]any) (api.ElementStub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qualifiedName, _ := props["qualifiedName"].(string)
	if qualifiedName == "" {
		return api.ElementStub{}, invalidParameter(http.StatusBadRequest, "the qualifiedName property is required")
	}
	if s.qualifiedNameTaken(qualifiedName, "") {
		return api.ElementStub{}, invalidParameter(http.StatusBadRequest,
			"an element with qualifiedName %s already exists", qualifiedName)
	}
	if anchorGUID != "" {
		if _, ok := s.elements[anchorGUID]; !ok {
			return api.ElementStub{}, invalidParameter(http.StatusNotFound, "the anchor element %s is not known", anchorGUID)
		}
	}
	if guid == "" {
		guid = uuid.NewString()
	}
	if _, ok := s.elements[guid]; ok {
		return api.ElementStub{}, invalidParameter(http.StatusBadRequest, "an element with guid %s already exists", guid)
	}

	typeName, _ := props["typeName"].(string)
	if typeName == "" {
		typeName = collection
	}
	stamp := s.now().UTC().Format(time.RFC3339Nano)

	e := &element{
		header: api.ElementHeader{
			GUID:       guid,
			TypeName:   typeName,
			AnchorGUID: anchorGUID,
			CreateTime: stamp,
			UpdateTime: stamp,
			Version:    1,
		},
		collection: collection,
		properties: props,
		seq:        s.next(),
	}
	s.elements[guid] = e
	return e.stub(), nil
}

func (s *store) updateElement(guid string, merge bool, props map[string]any) (api.ElementStub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.elements[guid]
	if !ok {
		return api.ElementStub{}, invalidParameter(http.StatusNotFound, "the element %s is not known", guid)
	}

	updated := props
	if merge {
		updated = maps.Clone(e.properties)
		maps.Copy(updated, props)
	}
	qualifiedName, _ := updated["qualifiedName"].(string)
	if qualifiedName == "" {
		return api.ElementStub{}, invalidParameter(http.StatusBadRequest, "the qualifiedName property is required")
	}
	if s.qualifiedNameTaken(qualifiedName, guid) {
		return api.ElementStub{}, invalidParameter(http.StatusBadRequest,
			"an element with qualifiedName %s already exists", qualifiedName)
	}
	if _, ok := updated["typeName"]; !ok {
		updated["typeName"] = e.header.TypeName
	}

	e.properties = updated
	e.header.Version++
	e.header.UpdateTime = s.now().UTC().Format(time.RFC3339Nano)
	return e.stub(), nil
}

// removeElement deletes guid, every element anchored to it and every
// relationship touching a deleted element. It returns the deleted elements.
func (s *store) removeElement(guid string) ([]api.ElementStub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.elements[guid]; !ok {
		return nil, invalidParameter(http.StatusNotFound, "the element %s is not known", guid)
	}

	var removed []api.ElementStub
	pending := []string{guid}
	for len(pending) > 0 {
		current := pending[0]
		pending = pending[1:]

		e, ok := s.elements[current]
		if !ok {
			continue
		}
		delete(s.elements, current)
		removed = append(removed, e.stub())

		for other, candidate := range s.elements {
			if candidate.header.AnchorGUID == current {
				pending = append(pending, other)
			}
		}
		for id, rel := range s.relationships {
			if rel.primary == current || rel.secondary == current {
				delete(s.relationships, id)
			}
		}
	}
	return removed, nil
}

func (s *store) getElement(guid string) (*api.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.elements[guid]
	if !ok {
		return nil, invalidParameter(http.StatusNotFound, "the element %s is not known", guid)
	}
	return e.document()
}

// findByName matches name as a regular expression against the qualifiedName
// and displayName of the elements in collection
func (s *store) findByName(collection, name string, startFrom, pageSize int) ([]api.ElementStub, error) {
	pattern, err := regexp.Compile("^(?:" + name + ")$")
	if err != nil {
		return nil, invalidParameter(http.StatusBadRequest, "the search string %q is not a valid regular expression", name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*element
	for _, e := range s.elements {
		if e.collection != collection {
			continue
		}
		qualifiedName, _ := e.properties["qualifiedName"].(string)
		displayName, _ := e.properties["displayName"].(string)
		if pattern.MatchString(qualifiedName) || (displayName != "" && pattern.MatchString(displayName)) {
			matches = append(matches, e)
		}
	}
	slices.SortFunc(matches, func(a, b *element) int { return cmp.Compare(a.seq, b.seq) })

	stubs := make([]api.ElementStub, 0, len(matches))
	for _, e := range window(matches, startFrom, pageSize) {
		stubs = append(stubs, e.stub())
	}
	return stubs, nil
}

func (s *store) requireEnds(primary, secondary string) error {
	if _, ok := s.elements[primary]; !ok {
		return invalidParameter(http.StatusNotFound, "the element %s is not known", primary)
	}
	if _, ok := s.elements[secondary]; !ok {
		return invalidParameter(http.StatusNotFound, "the element %s is not known", secondary)
	}
	return nil
}

func (s *store) between(collection, primary, secondary string) *relationship {
	for _, rel := range s.relationships {
		if rel.collection == collection && rel.primary == primary && rel.secondary == secondary {
			return rel
		}
	}
	return nil
}

// setupRelationship creates the relationship, or updates the existing
// instance between the pair when multi is false
func (s *store) setupRelationship(
	collection, name, primary, secondary string, props map[string]any, multi bool,
) (*relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireEnds(primary, secondary); err != nil {
		return nil, err
	}
	if !multi {
		if rel := s.between(collection, primary, secondary); rel != nil {
			rel.properties = props
			return rel, nil
		}
	}

	rel := &relationship{
		guid:       uuid.NewString(),
		name:       name,
		collection: collection,
		primary:    primary,
		secondary:  secondary,
		properties: props,
		seq:        s.next(),
	}
	s.relationships[rel.guid] = rel
	return rel, nil
}

func (s *store) updateRelationship(collection, guid string, merge bool, props map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel, ok := s.relationships[guid]
	if !ok || rel.collection != collection {
		return invalidParameter(http.StatusNotFound, "the relationship %s is not known", guid)
	}
	if merge {
		updated := maps.Clone(rel.properties)
		if updated == nil {
			updated = make(map[string]any, len(props))
		}
		maps.Copy(updated, props)
		props = updated
	}
	rel.properties = props
	return nil
}

func (s *store) clearRelationship(collection, guid string) (*relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel, ok := s.relationships[guid]
	if !ok || rel.collection != collection {
		return nil, invalidParameter(http.StatusNotFound, "the relationship %s is not known", guid)
	}
	delete(s.relationships, guid)
	return rel, nil
}

func (s *store) clearBetween(collection, primary, secondary string) (*relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel := s.between(collection, primary, secondary)
	if rel == nil {
		return nil, invalidParameter(http.StatusNotFound,
			"there is no %s relationship between %s and %s", collection, primary, secondary)
	}
	delete(s.relationships, rel.guid)
	return rel, nil
}

// related returns the elements at the other end of the relationships of
// collection touching guid, from either end
func (s *store) related(collection, guid string, startFrom, pageSize int) ([]api.RelatedElementStub, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.elements[guid]; !ok {
		return nil, invalidParameter(http.StatusNotFound, "the element %s is not known", guid)
	}

	var matches []*relationship
	for _, rel := range s.relationships {
		if rel.collection == collection && (rel.primary == guid || rel.secondary == guid) {
			matches = append(matches, rel)
		}
	}
	slices.SortFunc(matches, func(a, b *relationship) int { return cmp.Compare(a.seq, b.seq) })

	stubs := make([]api.RelatedElementStub, 0, len(matches))
	for _, rel := range window(matches, startFrom, pageSize) {
		other := rel.secondary
		if other == guid {
			other = rel.primary
		}
		stubs = append(stubs, api.RelatedElementStub{
			RelationshipHeader:     api.ElementStub{GUID: rel.guid, TypeName: rel.name},
			RelationshipProperties: rel.properties,
			RelatedElement:         s.elements[other].stub(),
		})
	}
	return stubs, nil
}

// document renders e as returned by a lookup
func (e *element) document() (*api.Element, error) {
	props, err := json.Marshal(e.properties)
	if err != nil {
		return nil, err
	}
	return &api.Element{ElementHeader: e.header, Properties: props}, nil
}

func window[T any](items []T, startFrom, pageSize int) []T {
	if startFrom >= len(items) {
		return nil
	}
	end := len(items)
	if pageSize > 0 && startFrom+pageSize < end {
		end = startFrom + pageSize
	}
	return items[startFrom:end]
}
