package api

import "time"

// RelationshipProperties are the properties common to every relationship
type RelationshipProperties struct {
	Class              string         `json:"class,omitempty"`
	EffectiveFrom      *time.Time     `json:"effectiveFrom,omitempty"`
	EffectiveTo        *time.Time     `json:"effectiveTo,omitempty"`
	ExtendedProperties map[string]any `json:"extendedProperties,omitempty"`
}

// LicenseProperties describe the granting of a license type to an element
type LicenseProperties struct {
	RelationshipProperties
	LicenseGUID       string     `json:"licenseGUID,omitempty"`
	Start             *time.Time `json:"start,omitempty"`
	End               *time.Time `json:"end,omitempty"`
	Conditions        string     `json:"conditions,omitempty"`
	Licensee          string     `json:"licensee,omitempty"`
	LicensedBy        string     `json:"licensedBy,omitempty"`
	Custodian         string     `json:"custodian,omitempty"`
	CustodianTypeName string     `json:"custodianTypeName,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// CertificationProperties describe the award of a certification type to an element
type CertificationProperties struct {
	RelationshipProperties
	CertificateGUID string     `json:"certificateGUID,omitempty"`
	Start           *time.Time `json:"start,omitempty"`
	End             *time.Time `json:"end,omitempty"`
	Conditions      string     `json:"conditions,omitempty"`
	CertifiedBy     string     `json:"certifiedBy,omitempty"`
	Custodian       string     `json:"custodian,omitempty"`
	RecipientName   string     `json:"recipient,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// ExternalReferenceLinkProperties describe the link from an element to an external reference
type ExternalReferenceLinkProperties struct {
	RelationshipProperties
	LinkID          string `json:"linkId,omitempty"`
	LinkDescription string `json:"linkDescription,omitempty"`
	Pages           string `json:"pages,omitempty"`
}

// ResourceListProperties describe why a resource is listed against an element
type ResourceListProperties struct {
	RelationshipProperties
	ResourceUse   string `json:"resourceUse,omitempty"`
	WatchResource bool   `json:"watchResource,omitempty"`
}

// StakeholderProperties describe the role a stakeholder plays for an element
type StakeholderProperties struct {
	RelationshipProperties
	StakeholderRole string `json:"stakeholderRole,omitempty"`
}

// AppointmentProperties describe the appointment of a person to a governance role
type AppointmentProperties struct {
	RelationshipProperties
	IsPublic bool `json:"isPublic,omitempty"`
}
