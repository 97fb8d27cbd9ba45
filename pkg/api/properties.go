package api

import "time"

// ReferenceableProperties are the properties common to every catalogued element
type ReferenceableProperties struct {
	Class                string            `json:"class,omitempty"`
	QualifiedName        string            `json:"qualifiedName,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
	TypeName             string            `json:"typeName,omitempty"`
	ExtendedProperties   map[string]any    `json:"extendedProperties,omitempty"`
	EffectiveFrom        *time.Time        `json:"effectiveFrom,omitempty"`
	EffectiveTo          *time.Time        `json:"effectiveTo,omitempty"`
}

// GetQualifiedName returns the unique name of the element
func (p *ReferenceableProperties) GetQualifiedName() string {
	if p == nil {
		return ""
	}
	return p.QualifiedName
}

// SetTypeName sets the type name when none was supplied by the caller
func (p *ReferenceableProperties) SetTypeName(typeName string) {
	if p != nil && p.TypeName == "" {
		p.TypeName = typeName
	}
}

// Properties is satisfied by every element property type.
type Properties interface {
	GetQualifiedName() string
}

// TypedProperties is satisfied by element property types that can default their type name.
type TypedProperties interface {
	Properties
	SetTypeName(typeName string)
}

// GovernanceDefinitionProperties are shared by license and certification types
type GovernanceDefinitionProperties struct {
	ReferenceableProperties
	DocumentIdentifier string   `json:"documentIdentifier,omitempty"`
	Title              string   `json:"title,omitempty"`
	Summary            string   `json:"summary,omitempty"`
	Description        string   `json:"description,omitempty"`
	Scope              string   `json:"scope,omitempty"`
	Domain             int      `json:"domainIdentifier,omitempty"`
	Priority           string   `json:"priority,omitempty"`
	Implications       []string `json:"implications,omitempty"`
	Outcomes           []string `json:"outcomes,omitempty"`
}

// LicenseTypeProperties describe a type of license
type LicenseTypeProperties struct {
	GovernanceDefinitionProperties
	Details string `json:"details,omitempty"`
}

// CertificationTypeProperties describe a type of certification
type CertificationTypeProperties struct {
	GovernanceDefinitionProperties
	Details string `json:"details,omitempty"`
}

// ExternalReferenceProperties describe a reference to a resource outside the catalog
type ExternalReferenceProperties struct {
	ReferenceableProperties
	ReferenceTitle    string   `json:"referenceTitle,omitempty"`
	ReferenceAbstract string   `json:"referenceAbstract,omitempty"`
	Authors           []string `json:"authors,omitempty"`
	URL               string   `json:"url,omitempty"`
	Organization      string   `json:"organization,omitempty"`
	ReferenceVersion  string   `json:"referenceVersion,omitempty"`
}

// GovernanceZoneProperties describe a governance zone
type GovernanceZoneProperties struct {
	ReferenceableProperties
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	Criteria    string `json:"criteria,omitempty"`
	Scope       string `json:"scope,omitempty"`
	Domain      int    `json:"domainIdentifier,omitempty"`
}

// SubjectAreaProperties describe a subject area definition
type SubjectAreaProperties struct {
	ReferenceableProperties
	SubjectAreaName string `json:"subjectAreaName,omitempty"`
	DisplayName     string `json:"displayName,omitempty"`
	Description     string `json:"description,omitempty"`
	Usage           string `json:"usage,omitempty"`
	Scope           string `json:"scope,omitempty"`
	Domain          int    `json:"domainIdentifier,omitempty"`
}

// GovernanceDomainProperties describe a governance domain
type GovernanceDomainProperties struct {
	ReferenceableProperties
	DomainIdentifier int    `json:"domainIdentifier,omitempty"`
	DisplayName      string `json:"displayName,omitempty"`
	Description      string `json:"description,omitempty"`
}

// GovernanceRoleProperties describe a governance role such as a governance officer
type GovernanceRoleProperties struct {
	ReferenceableProperties
	RoleID      string `json:"roleId,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Scope       string `json:"scope,omitempty"`
	Domain      int    `json:"domainIdentifier,omitempty"`
	HeadCount   int    `json:"headCount,omitempty"`
}

// ValidValueProperties describe a valid value or valid value set
type ValidValueProperties struct {
	ReferenceableProperties
	DisplayName  string `json:"displayName,omitempty"`
	Description  string `json:"description,omitempty"`
	Usage        string `json:"usage,omitempty"`
	Scope        string `json:"scope,omitempty"`
	Preferred    string `json:"preferredValue,omitempty"`
	IsSet        bool   `json:"isSet,omitempty"`
	IsDeprecated bool   `json:"isDeprecated,omitempty"`
}

// FileProperties describe a data file asset
type FileProperties struct {
	ReferenceableProperties
	DisplayName   string `json:"displayName,omitempty"`
	Description   string `json:"description,omitempty"`
	PathName      string `json:"pathName,omitempty"`
	FileType      string `json:"fileType,omitempty"`
	FileExtension string `json:"fileExtension,omitempty"`
	Encoding      string `json:"encoding,omitempty"`
}

// FolderProperties describe a file system folder asset
type FolderProperties struct {
	ReferenceableProperties
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	PathName    string `json:"pathName,omitempty"`
}

// PropertyMap holds the properties of an element of any type as decoded JSON.
// It is used where the property type is only known at run time.
type PropertyMap map[string]any

// GetQualifiedName returns the qualifiedName entry, or "" when absent
func (m PropertyMap) GetQualifiedName() string {
	name, _ := m["qualifiedName"].(string)
	return name
}

// SetTypeName sets the typeName entry when none is present
func (m *PropertyMap) SetTypeName(typeName string) {
	if *m == nil {
		*m = PropertyMap{}
	}
	if existing, _ := (*m)["typeName"].(string); existing == "" {
		(*m)["typeName"] = typeName
	}
}
