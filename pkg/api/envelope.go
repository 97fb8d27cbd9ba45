// Package api provides the request bodies, response envelopes and property
// types exchanged with an open metadata server.
package api

import (
	"encoding/json"
	"net/http"
)

// FFDCResponse is the status block embedded in every response envelope.
// A zero RelatedHTTPCode or 200 with no exception class means success.
type FFDCResponse struct {
	Class                           string            `json:"class,omitempty"`
	RelatedHTTPCode                 int               `json:"relatedHTTPCode"`
	ExceptionClassName              string            `json:"exceptionClassName,omitempty"`
	ExceptionCausedBy               string            `json:"exceptionCausedBy,omitempty"`
	ActionDescription               string            `json:"actionDescription,omitempty"`
	ExceptionErrorMessage           string            `json:"exceptionErrorMessage,omitempty"`
	ExceptionErrorMessageID         string            `json:"exceptionErrorMessageId,omitempty"`
	ExceptionErrorMessageParameters []string          `json:"exceptionErrorMessageParameters,omitempty"`
	ExceptionSystemAction           string            `json:"exceptionSystemAction,omitempty"`
	ExceptionUserAction             string            `json:"exceptionUserAction,omitempty"`
	ExceptionProperties             map[string]string `json:"exceptionProperties,omitempty"`
}

// Status returns the status block. Envelopes embedding FFDCResponse get it for free.
func (r *FFDCResponse) Status() *FFDCResponse {
	return r
}

// Failed reports whether the status block describes a server-side failure
func (r *FFDCResponse) Failed() bool {
	if r == nil {
		return false
	}
	if r.ExceptionClassName != "" {
		return true
	}
	return r.RelatedHTTPCode != 0 && r.RelatedHTTPCode != http.StatusOK
}

// Envelope is implemented by every response type
type Envelope interface {
	Status() *FFDCResponse
}

// VoidResponse is returned by operations with no result
type VoidResponse struct {
	FFDCResponse
}

// GUIDResponse carries a single GUID
type GUIDResponse struct {
	FFDCResponse
	GUID string `json:"guid,omitempty"`
}

// GUIDListResponse carries a list of GUIDs
type GUIDListResponse struct {
	FFDCResponse
	GUIDs []string `json:"guids,omitempty"`
}

// Len returns the number of GUIDs
func (r *GUIDListResponse) Len() int { return len(r.GUIDs) }

// ElementResponse carries a single element retrieved by GUID
type ElementResponse struct {
	FFDCResponse
	Element *Element `json:"element,omitempty"`
}

// RelatedElementListResponse carries a page of related element stubs
type RelatedElementListResponse struct {
	FFDCResponse
	ElementList []RelatedElementStub `json:"elementList,omitempty"`
}

// Len returns the number of elements in the page
func (r *RelatedElementListResponse) Len() int { return len(r.ElementList) }

// ElementStubListResponse carries a page of element stubs
type ElementStubListResponse struct {
	FFDCResponse
	ElementList []ElementStub `json:"elementList,omitempty"`
}

// Len returns the number of elements in the page
func (r *ElementStubListResponse) Len() int { return len(r.ElementList) }

// ConnectionResponse carries the connection describing an event topic
type ConnectionResponse struct {
	FFDCResponse
	Connection *Connection `json:"connection,omitempty"`
}

// ReferenceableRequestBody is the body of create and update requests
type ReferenceableRequestBody struct {
	Class      string `json:"class,omitempty"`
	AnchorGUID string `json:"anchorGUID,omitempty"`
	Properties any    `json:"properties,omitempty"`
}

// RelationshipRequestBody is the body of relationship setup and update requests
type RelationshipRequestBody struct {
	Class            string `json:"class,omitempty"`
	RelationshipName string `json:"relationshipName,omitempty"`
	Properties       any    `json:"properties,omitempty"`
}

// NameRequestBody is the body of search-by-name requests
type NameRequestBody struct {
	Class         string `json:"class,omitempty"`
	Name          string `json:"name"`
	NameParameter string `json:"nameParameterName,omitempty"`
}

// NullRequestBody is sent on POST requests that carry no content
type NullRequestBody struct {
	Class string `json:"class,omitempty"`
}

// ElementHeader identifies a stored element
type ElementHeader struct {
	GUID       string `json:"guid"`
	TypeName   string `json:"typeName,omitempty"`
	AnchorGUID string `json:"anchorGUID,omitempty"`
	CreateTime string `json:"createTime,omitempty"`
	UpdateTime string `json:"updateTime,omitempty"`
	Version    int64  `json:"version,omitempty"`
}

// Element is an element retrieved by GUID. Properties is kept raw so that
// each entity family can decode it into its own property type.
type Element struct {
	ElementHeader ElementHeader   `json:"elementHeader"`
	Properties    json.RawMessage `json:"properties,omitempty"`
}

// DecodeProperties decodes the element's properties into a value of type P
func DecodeProperties[P any](e *Element) (*P, error) {
	var props P
	if e == nil || len(e.Properties) == 0 {
		return &props, nil
	}
	if err := json.Unmarshal(e.Properties, &props); err != nil {
		return nil, err
	}
	return &props, nil
}

// ElementStub is the minimal projection of an element
type ElementStub struct {
	GUID       string `json:"guid"`
	TypeName   string `json:"typeName,omitempty"`
	UniqueName string `json:"uniqueName,omitempty"`
}

// RelatedElementStub describes one relationship from a starting element and the element at its other end
type RelatedElementStub struct {
	RelationshipHeader     ElementStub    `json:"relationshipHeader"`
	RelationshipProperties map[string]any `json:"relationshipProperties,omitempty"`
	RelatedElement         ElementStub    `json:"relatedElement"`
}
