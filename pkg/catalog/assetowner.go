package catalog

import (
	"context"

	"github.com/odpi/egeria-sub150/pkg/api"
)

type (
	// LicenseTypes manages license type definitions
	LicenseTypes = Elements[api.LicenseTypeProperties, *api.LicenseTypeProperties]
	// CertificationTypes manages certification type definitions
	CertificationTypes = Elements[api.CertificationTypeProperties, *api.CertificationTypeProperties]
	// ExternalReferences manages references to resources outside the catalog
	ExternalReferences = Elements[api.ExternalReferenceProperties, *api.ExternalReferenceProperties]
	// GovernanceZones manages governance zones
	GovernanceZones = Elements[api.GovernanceZoneProperties, *api.GovernanceZoneProperties]
	// SubjectAreas manages subject area definitions
	SubjectAreas = Elements[api.SubjectAreaProperties, *api.SubjectAreaProperties]
	// GovernanceDomains manages governance domain descriptions
	GovernanceDomains = Elements[api.GovernanceDomainProperties, *api.GovernanceDomainProperties]
	// GovernanceRoles manages governance roles and officers
	GovernanceRoles = Elements[api.GovernanceRoleProperties, *api.GovernanceRoleProperties]
	// ValidValues manages valid value definitions and sets
	ValidValues = Elements[api.ValidValueProperties, *api.ValidValueProperties]
	// Files manages data file assets
	Files = Elements[api.FileProperties, *api.FileProperties]
	// Folders manages file system folder assets
	Folders = Elements[api.FolderProperties, *api.FolderProperties]
	// AnyElements manages elements of a kind chosen at run time
	AnyElements = Elements[api.PropertyMap, *api.PropertyMap]
)

// AssetOwner is the asset owner access service: the generic operations of
// Client plus one façade per element and relationship kind.
type AssetOwner struct {
	*Client

	LicenseTypes       *LicenseTypes
	CertificationTypes *CertificationTypes
	ExternalReferences *ExternalReferences
	GovernanceZones    *GovernanceZones
	SubjectAreas       *SubjectAreas
	GovernanceDomains  *GovernanceDomains
	GovernanceRoles    *GovernanceRoles
	ValidValues        *ValidValues
	Files              *Files
	Folders            *Folders

	Licenses               *MultiLink[api.LicenseProperties]
	Certifications         *MultiLink[api.CertificationProperties]
	ExternalReferenceLinks *MultiLink[api.ExternalReferenceLinkProperties]
	Appointments           *MultiLink[api.AppointmentProperties]

	ZoneMembers            *UniLink[api.RelationshipProperties]
	MoreInformation        *UniLink[api.RelationshipProperties]
	ResourceLists          *UniLink[api.ResourceListProperties]
	Stakeholders           *UniLink[api.StakeholderProperties]
	SubjectAreaHierarchy   *UniLink[api.RelationshipProperties]
	ValidValuesAssignments *UniLink[api.RelationshipProperties]
	NestedFiles            *UniLink[api.RelationshipProperties]
	FolderHierarchy        *UniLink[api.RelationshipProperties]

	outTopicConnection string
}

// NewAssetOwner creates a client for the asset owner service described by cfg
func NewAssetOwner(cfg Config) (*AssetOwner, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return BindAssetOwner(c), nil
}

// BindAssetOwner binds every asset owner façade to c
func BindAssetOwner(c *Client) *AssetOwner {
	return &AssetOwner{
		Client: c,

		LicenseTypes:       NewElements[api.LicenseTypeProperties](c, LicenseTypeKind),
		CertificationTypes: NewElements[api.CertificationTypeProperties](c, CertificationTypeKind),
		ExternalReferences: NewElements[api.ExternalReferenceProperties](c, ExternalReferenceKind),
		GovernanceZones:    NewElements[api.GovernanceZoneProperties](c, GovernanceZoneKind),
		SubjectAreas:       NewElements[api.SubjectAreaProperties](c, SubjectAreaKind),
		GovernanceDomains:  NewElements[api.GovernanceDomainProperties](c, GovernanceDomainKind),
		GovernanceRoles:    NewElements[api.GovernanceRoleProperties](c, GovernanceRoleKind),
		ValidValues:        NewElements[api.ValidValueProperties](c, ValidValueKind),
		Files:              NewElements[api.FileProperties](c, FileKind),
		Folders:            NewElements[api.FolderProperties](c, FolderKind),

		Licenses:               NewMultiLink[api.LicenseProperties](c, LicenseRelationship),
		Certifications:         NewMultiLink[api.CertificationProperties](c, CertificationRelationship),
		ExternalReferenceLinks: NewMultiLink[api.ExternalReferenceLinkProperties](c, ExternalReferenceLinkRelationship),
		Appointments:           NewMultiLink[api.AppointmentProperties](c, PersonRoleAppointmentRelationship),

		ZoneMembers:            NewUniLink[api.RelationshipProperties](c, ZoneMembershipRelationship),
		MoreInformation:        NewUniLink[api.RelationshipProperties](c, MoreInformationRelationship),
		ResourceLists:          NewUniLink[api.ResourceListProperties](c, ResourceListRelationship),
		Stakeholders:           NewUniLink[api.StakeholderProperties](c, StakeholderRelationship),
		SubjectAreaHierarchy:   NewUniLink[api.RelationshipProperties](c, SubjectAreaHierarchyRelationship),
		ValidValuesAssignments: NewUniLink[api.RelationshipProperties](c, ValidValuesAssignmentRelationship),
		NestedFiles:            NewUniLink[api.RelationshipProperties](c, NestedFileRelationship),
		FolderHierarchy:        NewUniLink[api.RelationshipProperties](c, FolderHierarchyRelationship),

		outTopicConnection: outTopicConnectionTemplate(c.ServiceRoot()),
	}
}

// Elements returns a façade for kind whose properties are decoded as a map
func (a *AssetOwner) Elements(kind ElementKind) *AnyElements {
	return NewElements[api.PropertyMap](a.Client, kind)
}

// AddMoreInformation links detailGUID to elementGUID as more information
func (a *AssetOwner) AddMoreInformation(ctx context.Context, userID, elementGUID, detailGUID string) error {
	return a.MoreInformation.Link(ctx, userID, elementGUID, detailGUID, nil)
}

// GetMoreInformation returns a page of the elements linked to elementGUID as more information
func (a *AssetOwner) GetMoreInformation(
	ctx context.Context, userID, elementGUID string, startFrom, pageSize int,
) ([]api.RelatedElementStub, error) {
	return a.MoreInformation.List(ctx, userID, elementGUID, startFrom, pageSize)
}

// GetOutTopicConnection returns the connection of the service's out topic
func (a *AssetOwner) GetOutTopicConnection(ctx context.Context, userID, callerID string) (*api.Connection, error) {
	return a.GetConnection(ctx, userID, callerID, a.outTopicConnection)
}
