package api

// ConnectorType names the provider able to build a connector
type ConnectorType struct {
	ConnectorProviderClassName string `json:"connectorProviderClassName"`
}

// Endpoint is the network address a connector attaches to
type Endpoint struct {
	Address string `json:"address"`
}

// Connection describes how to reach an event topic
type Connection struct {
	Class                   string         `json:"class,omitempty"`
	QualifiedName           string         `json:"qualifiedName,omitempty"`
	ConnectorType           *ConnectorType `json:"connectorType,omitempty"`
	Endpoint                *Endpoint      `json:"endpoint,omitempty"`
	ConfigurationProperties map[string]any `json:"configurationProperties,omitempty"`
}

// EventType is the kind of change reported by an out-topic event
type EventType string

const (
	// EventNewElement reports a created element
	EventNewElement EventType = "NEW_ELEMENT_CREATED"
	// EventUpdatedElement reports an updated element
	EventUpdatedElement EventType = "ELEMENT_UPDATED"
	// EventDeletedElement reports a deleted element
	EventDeletedElement EventType = "ELEMENT_DELETED"
	// EventNewRelationship reports a created relationship
	EventNewRelationship EventType = "NEW_RELATIONSHIP_CREATED"
	// EventDeletedRelationship reports a deleted relationship
	EventDeletedRelationship EventType = "RELATIONSHIP_DELETED"
)

// AssetOwnerEvent is published on the out-topic when catalog content changes
type AssetOwnerEvent struct {
	EventVersionID int64          `json:"eventVersionId,omitempty"`
	EventType      EventType      `json:"eventType"`
	ElementHeader  ElementStub    `json:"elementHeader"`
	Properties     map[string]any `json:"elementProperties,omitempty"`
}
