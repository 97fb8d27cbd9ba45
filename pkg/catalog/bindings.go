package catalog

import "strings"

// ElementKind binds an element family to its open metadata type and the URL
// collection its operations are served under.
type ElementKind struct {
	Name       string
	TypeName   string
	Collection string
}

// RelationshipKind binds a relationship type to its URL collection. MultiLink
// kinds allow several instances between the same pair of elements, each
// addressed by its own relationship GUID.
type RelationshipKind struct {
	Name       string
	Collection string
	MultiLink  bool
}

// Element kinds of the asset owner service
var (
	LicenseTypeKind       = ElementKind{Name: "LicenseType", TypeName: "LicenseType", Collection: "license-types"}
	CertificationTypeKind = ElementKind{Name: "CertificationType", TypeName: "CertificationType", Collection: "certification-types"}
	ExternalReferenceKind = ElementKind{Name: "ExternalReference", TypeName: "ExternalReference", Collection: "external-references"}
	GovernanceZoneKind    = ElementKind{Name: "GovernanceZone", TypeName: "GovernanceZone", Collection: "governance-zones"}
	SubjectAreaKind       = ElementKind{Name: "SubjectArea", TypeName: "SubjectAreaDefinition", Collection: "subject-areas"}
	GovernanceDomainKind  = ElementKind{Name: "GovernanceDomain", TypeName: "GovernanceDomainDescription", Collection: "governance-domains"}
	GovernanceRoleKind    = ElementKind{Name: "GovernanceRole", TypeName: "GovernanceRole", Collection: "governance-roles"}
	ValidValueKind        = ElementKind{Name: "ValidValue", TypeName: "ValidValueDefinition", Collection: "valid-values"}
	FileKind              = ElementKind{Name: "File", TypeName: "DataFile", Collection: "files"}
	FolderKind            = ElementKind{Name: "Folder", TypeName: "FileFolder", Collection: "folders"}
)

// Relationship kinds of the asset owner service
var (
	LicenseRelationship               = RelationshipKind{Name: "License", Collection: "licenses", MultiLink: true}
	CertificationRelationship         = RelationshipKind{Name: "Certification", Collection: "certifications", MultiLink: true}
	ExternalReferenceLinkRelationship = RelationshipKind{Name: "ExternalReferenceLink", Collection: "external-reference-links", MultiLink: true}
	PersonRoleAppointmentRelationship = RelationshipKind{Name: "PersonRoleAppointment", Collection: "person-role-appointments", MultiLink: true}
	ZoneMembershipRelationship        = RelationshipKind{Name: "ZoneMembership", Collection: "governance-zone-members"}
	MoreInformationRelationship       = RelationshipKind{Name: "MoreInformation", Collection: "more-information"}
	ResourceListRelationship          = RelationshipKind{Name: "ResourceList", Collection: "resource-list"}
	StakeholderRelationship           = RelationshipKind{Name: "Stakeholder", Collection: "stakeholders"}
	SubjectAreaHierarchyRelationship  = RelationshipKind{Name: "SubjectAreaHierarchy", Collection: "subject-area-hierarchy"}
	ValidValuesAssignmentRelationship = RelationshipKind{Name: "ValidValuesAssignment", Collection: "valid-values-assignment"}
	NestedFileRelationship            = RelationshipKind{Name: "NestedFile", Collection: "nested-files"}
	FolderHierarchyRelationship       = RelationshipKind{Name: "FolderHierarchy", Collection: "folder-hierarchy"}
)

// ElementKinds returns every element kind of the asset owner service
func ElementKinds() []ElementKind {
	return []ElementKind{
		LicenseTypeKind,
		CertificationTypeKind,
		ExternalReferenceKind,
		GovernanceZoneKind,
		SubjectAreaKind,
		GovernanceDomainKind,
		GovernanceRoleKind,
		ValidValueKind,
		FileKind,
		FolderKind,
	}
}

// RelationshipKinds returns every relationship kind of the asset owner service
func RelationshipKinds() []RelationshipKind {
	return []RelationshipKind{
		LicenseRelationship,
		CertificationRelationship,
		ExternalReferenceLinkRelationship,
		PersonRoleAppointmentRelationship,
		ZoneMembershipRelationship,
		MoreInformationRelationship,
		ResourceListRelationship,
		StakeholderRelationship,
		SubjectAreaHierarchyRelationship,
		ValidValuesAssignmentRelationship,
		NestedFileRelationship,
		FolderHierarchyRelationship,
	}
}

// LookupElementKind finds an element kind by name or collection, ignoring case
func LookupElementKind(name string) (ElementKind, bool) {
	for _, k := range ElementKinds() {
		if strings.EqualFold(k.Name, name) || strings.EqualFold(k.Collection, name) {
			return k, true
		}
	}
	return ElementKind{}, false
}

// LookupRelationshipKind finds a relationship kind by name or collection, ignoring case
func LookupRelationshipKind(name string) (RelationshipKind, bool) {
	for _, k := range RelationshipKinds() {
		if strings.EqualFold(k.Name, name) || strings.EqualFold(k.Collection, name) {
			return k, true
		}
	}
	return RelationshipKind{}, false
}

// ElementTemplates are the URL templates of one element kind. Placeholders
// {0} and {1} are the server name and user id.
type ElementTemplates struct {
	Create string // POST
	Update string // POST, {2} guid, {3} isMergeUpdate
	Delete string // POST, {2} guid
	Get    string // GET, {2} guid
	ByName string // POST, {2} startFrom, {3} pageSize
}

// Templates returns the URL templates of k under the access service root
func (k ElementKind) Templates(serviceRoot string) ElementTemplates {
	base := serviceRoot + "/" + k.Collection
	return ElementTemplates{
		Create: base,
		Update: base + "/{2}/update?isMergeUpdate={3}",
		Delete: base + "/{2}/delete",
		Get:    base + "/{2}",
		ByName: base + "/by-name?startFrom={2}&pageSize={3}",
	}
}

// RelationshipTemplates are the URL templates of one relationship kind.
// Setup and ClearBetween take {2} primary and {3} secondary; List takes {2}
// the starting element, {3} startFrom and {4} pageSize; Update and Clear
// address a multi-link instance by {2} relationship GUID.
type RelationshipTemplates struct {
	Setup        string
	ClearBetween string
	List         string
	Update       string
	Clear        string
}

// Templates returns the URL templates of k under the access service root
func (k RelationshipKind) Templates(serviceRoot string) RelationshipTemplates {
	related := serviceRoot + "/related-elements/{2}/" + k.Collection
	instances := serviceRoot + "/" + k.Collection + "/relationships/{2}"

	t := RelationshipTemplates{
		Setup:        related + "/{3}",
		ClearBetween: related + "/{3}/delete",
		List:         related + "?startFrom={3}&pageSize={4}",
	}
	if k.MultiLink {
		t.Setup = related + "/{3}/instances"
		t.Update = instances + "/update?isMergeUpdate={3}"
		t.Clear = instances + "/delete"
	}
	return t
}

// outTopicConnectionTemplate takes {2} the caller id
func outTopicConnectionTemplate(serviceRoot string) string {
	return serviceRoot + "/topics/out-topic-connection/{2}"
}
