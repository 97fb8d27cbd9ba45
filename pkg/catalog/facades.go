package catalog

import (
	"context"
	"iter"
	"maps"

	"github.com/odpi/egeria-sub150/pkg/api"
)

// Element is an element whose properties were decoded into P
type Element[P any] struct {
	Header     api.ElementHeader
	Properties *P
}

// Elements binds the generic element operations to one element kind and its
// property type P.
type Elements[P any, PT interface {
	*P
	api.TypedProperties
}] struct {
	client    *Client
	kind      ElementKind
	templates ElementTemplates
}

// NewElements binds kind to c
func NewElements[P any, PT interface {
	*P
	api.TypedProperties
}](c *Client, kind ElementKind) *Elements[P, PT] {
	return &Elements[P, PT]{
		client:    c,
		kind:      kind,
		templates: kind.Templates(c.ServiceRoot()),
	}
}

// Kind returns the bound element kind
func (e *Elements[P, PT]) Kind() ElementKind {
	return e.kind
}

// Create creates an element of the bound kind. The type name defaults to the
// kind's type name; props is not modified.
func (e *Elements[P, PT]) Create(ctx context.Context, userID string, props *P) (string, error) {
	return e.client.CreateReferenceable(ctx, userID, e.typed(props), e.templates.Create)
}

// CreateAnchored creates an element whose lifecycle is bound to anchorGUID
func (e *Elements[P, PT]) CreateAnchored(ctx context.Context, userID, anchorGUID string, props *P) (string, error) {
	return e.client.CreateReferenceableWithAnchor(ctx, userID, anchorGUID, e.typed(props), e.templates.Create)
}

// Update replaces the element's properties, or merges them when isMergeUpdate is set
func (e *Elements[P, PT]) Update(ctx context.Context, userID, guid string, isMergeUpdate bool, props *P) error {
	return e.client.UpdateReferenceable(ctx, userID, guid, isMergeUpdate, properties[P, PT](props), e.templates.Update)
}

// Delete removes the element and every element anchored to it
func (e *Elements[P, PT]) Delete(ctx context.Context, userID, guid string) error {
	return e.client.RemoveReferenceable(ctx, userID, guid, e.templates.Delete)
}

// Get retrieves the element and decodes its properties
func (e *Elements[P, PT]) Get(ctx context.Context, userID, guid string) (*Element[P], error) {
	el, err := e.client.GetReferenceable(ctx, userID, guid, e.templates.Get)
	if err != nil {
		return nil, err
	}

	props, err := api.DecodeProperties[P](el)
	if err != nil {
		return nil, err
	}
	return &Element[P]{Header: el.ElementHeader, Properties: props}, nil
}

// FindByName returns a page of elements of the bound kind whose name matches name
func (e *Elements[P, PT]) FindByName(
	ctx context.Context, userID, name string, startFrom, pageSize int,
) ([]api.ElementStub, error) {
	return e.client.GetElementStubsByName(ctx, userID, name, e.templates.ByName, startFrom, pageSize)
}

// typed returns a copy of props carrying the kind's type name
func (e *Elements[P, PT]) typed(props *P) api.Properties {
	if props == nil {
		return nil
	}
	cp := *props
	if m, ok := any(&cp).(*api.PropertyMap); ok {
		*m = maps.Clone(*m)
	}
	PT(&cp).SetTypeName(e.kind.TypeName)
	return PT(&cp)
}

func properties[P any, PT interface {
	*P
	api.TypedProperties
}](props *P) api.Properties {
	if props == nil {
		return nil
	}
	return PT(props)
}

// UniLink binds the uni-link relationship operations to one relationship kind
type UniLink[R any] struct {
	client    *Client
	kind      RelationshipKind
	templates RelationshipTemplates
}

// NewUniLink binds kind to c
func NewUniLink[R any](c *Client, kind RelationshipKind) *UniLink[R] {
	return &UniLink[R]{
		client:    c,
		kind:      kind,
		templates: kind.Templates(c.ServiceRoot()),
	}
}

// Kind returns the bound relationship kind
func (l *UniLink[R]) Kind() RelationshipKind {
	return l.kind
}

// Link creates the relationship from primaryGUID to secondaryGUID, or updates it in place
func (l *UniLink[R]) Link(ctx context.Context, userID, primaryGUID, secondaryGUID string, props *R) error {
	return l.client.SetupRelationship(ctx, userID, primaryGUID, l.kind.Name, optional(props), secondaryGUID,
		l.templates.Setup)
}

// Unlink removes the relationship from primaryGUID to secondaryGUID
func (l *UniLink[R]) Unlink(ctx context.Context, userID, primaryGUID, secondaryGUID string) error {
	return l.client.ClearRelationshipBetween(ctx, userID, primaryGUID, l.kind.Name, secondaryGUID,
		l.templates.ClearBetween)
}

// List returns a page of the elements related to guid through the bound kind
func (l *UniLink[R]) List(
	ctx context.Context, userID, guid string, startFrom, pageSize int,
) ([]api.RelatedElementStub, error) {
	return l.client.GetRelatedElements(ctx, userID, guid, l.templates.List, startFrom, pageSize)
}

// All walks every page of List
func (l *UniLink[R]) All(
	ctx context.Context, userID, guid string, pageSize int,
) iter.Seq2[api.RelatedElementStub, error] {
	return l.client.AllRelatedElements(ctx, userID, guid, l.templates.List, pageSize)
}

// MultiLink binds the multi-link relationship operations to one relationship kind
type MultiLink[R any] struct {
	client    *Client
	kind      RelationshipKind
	templates RelationshipTemplates
}

// NewMultiLink binds kind to c
func NewMultiLink[R any](c *Client, kind RelationshipKind) *MultiLink[R] {
	return &MultiLink[R]{
		client:    c,
		kind:      kind,
		templates: kind.Templates(c.ServiceRoot()),
	}
}

// Kind returns the bound relationship kind
func (l *MultiLink[R]) Kind() RelationshipKind {
	return l.kind
}

// Link creates a new relationship instance and returns its GUID
func (l *MultiLink[R]) Link(ctx context.Context, userID, primaryGUID, secondaryGUID string, props *R) (string, error) {
	return l.client.SetupMultiLinkRelationship(ctx, userID, primaryGUID, l.kind.Name, optional(props), secondaryGUID,
		l.templates.Setup)
}

// Update updates the relationship instance relationshipGUID
func (l *MultiLink[R]) Update(
	ctx context.Context, userID, relationshipGUID string, isMergeUpdate bool, props *R,
) error {
	return l.client.UpdateRelationship(ctx, userID, relationshipGUID, isMergeUpdate, optional(props),
		l.templates.Update)
}

// Unlink removes the relationship instance relationshipGUID
func (l *MultiLink[R]) Unlink(ctx context.Context, userID, relationshipGUID string) error {
	return l.client.ClearRelationship(ctx, userID, relationshipGUID, l.templates.Clear)
}

// List returns a page of the elements related to guid through the bound kind.
// Each instance appears separately.
func (l *MultiLink[R]) List(
	ctx context.Context, userID, guid string, startFrom, pageSize int,
) ([]api.RelatedElementStub, error) {
	return l.client.GetRelatedElements(ctx, userID, guid, l.templates.List, startFrom, pageSize)
}

// optional keeps absent relationship properties an untyped nil
func optional[R any](props *R) any {
	if props == nil {
		return nil
	}
	return props
}
