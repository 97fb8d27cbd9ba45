package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFFDCResponse_Failed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status *FFDCResponse
		want   bool
	}{
		{name: "nil", status: nil, want: false},
		{name: "zero value", status: &FFDCResponse{}, want: false},
		{name: "http 200", status: &FFDCResponse{RelatedHTTPCode: 200}, want: false},
		{name: "http 400", status: &FFDCResponse{RelatedHTTPCode: 400}, want: true},
		{name: "exception class only", status: &FFDCResponse{ExceptionClassName: "PropertyServerException"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.status.Failed())
		})
	}
}

func TestEnvelopeDecoding(t *testing.T) {
	t.Parallel()

	payload := `{
		"class": "RelatedElementListResponse",
		"relatedHTTPCode": 200,
		"elementList": [{
			"relationshipHeader": {"guid": "rel-1", "typeName": "MoreInformation"},
			"relatedElement": {"guid": "G2", "typeName": "Referenceable", "uniqueName": "asset:2"}
		}]
	}`

	var resp RelatedElementListResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	var envelope Envelope = &resp
	assert.False(t, envelope.Status().Failed())
	require.Len(t, resp.ElementList, 1)
	assert.Equal(t, "G2", resp.ElementList[0].RelatedElement.GUID)
	assert.Equal(t, "MoreInformation", resp.ElementList[0].RelationshipHeader.TypeName)
}

func TestDecodeProperties(t *testing.T) {
	t.Parallel()

	element := &Element{
		ElementHeader: ElementHeader{GUID: "G1", TypeName: "GovernanceZone"},
		Properties:    json.RawMessage(`{"qualifiedName":"zone:quarantine","displayName":"Quarantine","criteria":"new data"}`),
	}

	props, err := DecodeProperties[GovernanceZoneProperties](element)
	require.NoError(t, err)
	assert.Equal(t, "zone:quarantine", props.GetQualifiedName())
	assert.Equal(t, "Quarantine", props.DisplayName)
	assert.Equal(t, "new data", props.Criteria)

	empty, err := DecodeProperties[GovernanceZoneProperties](nil)
	require.NoError(t, err)
	assert.Empty(t, empty.QualifiedName)

	_, err = DecodeProperties[GovernanceZoneProperties](&Element{Properties: json.RawMessage(`[1,2]`)})
	require.Error(t, err)
}

func TestEmbeddedQualifiedName(t *testing.T) {
	t.Parallel()

	license := &LicenseTypeProperties{}
	license.QualifiedName = "license:cc-by"

	var props TypedProperties = license
	props.SetTypeName("LicenseType")
	assert.Equal(t, "license:cc-by", props.GetQualifiedName())
	assert.Equal(t, "LicenseType", license.TypeName)

	props.SetTypeName("Other")
	assert.Equal(t, "LicenseType", license.TypeName, "caller supplied type name wins")

	data, err := json.Marshal(license)
	require.NoError(t, err)
	assert.JSONEq(t, `{"qualifiedName":"license:cc-by","typeName":"LicenseType"}`, string(data))
}

func TestPropertyMap(t *testing.T) {
	t.Parallel()

	var empty PropertyMap
	assert.Empty(t, empty.GetQualifiedName())

	props := PropertyMap{"qualifiedName": "asset:1", "displayName": "Test"}
	var typed TypedProperties = &props
	typed.SetTypeName("DataFile")
	typed.SetTypeName("Other")
	assert.Equal(t, "asset:1", typed.GetQualifiedName())
	assert.Equal(t, "DataFile", props["typeName"])

	var unset PropertyMap
	unset.SetTypeName("Folder")
	assert.Equal(t, PropertyMap{"typeName": "Folder"}, unset)

	wrongType := PropertyMap{"qualifiedName": 42}
	assert.Empty(t, wrongType.GetQualifiedName())
}
