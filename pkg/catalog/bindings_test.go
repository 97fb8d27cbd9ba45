package catalog_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odpi/egeria-sub150/pkg/api"
	"github.com/odpi/egeria-sub150/pkg/catalog"
)

func TestKindTables(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, kind := range catalog.ElementKinds() {
		assert.NotEmpty(t, kind.TypeName, kind.Name)
		assert.False(t, seen[kind.Collection], "duplicate collection %s", kind.Collection)
		seen[kind.Collection] = true

		found, ok := catalog.LookupElementKind(strings.ToUpper(kind.Collection))
		require.True(t, ok)
		assert.Equal(t, kind, found)
	}

	multi := 0
	for _, kind := range catalog.RelationshipKinds() {
		assert.False(t, seen[kind.Collection], "duplicate collection %s", kind.Collection)
		seen[kind.Collection] = true

		found, ok := catalog.LookupRelationshipKind(kind.Name)
		require.True(t, ok)
		assert.Equal(t, kind, found)
		if kind.MultiLink {
			multi++
		}
	}
	assert.Equal(t, 4, multi)

	_, ok := catalog.LookupElementKind("nothing")
	assert.False(t, ok)
}

func TestTemplates(t *testing.T) {
	t.Parallel()

	root := catalog.ServiceRoot("asset-owner")

	zones := catalog.GovernanceZoneKind.Templates(root)
	assert.Equal(t, root+"/governance-zones", zones.Create)
	assert.Equal(t, root+"/governance-zones/{2}/update?isMergeUpdate={3}", zones.Update)
	assert.Equal(t, root+"/governance-zones/{2}/delete", zones.Delete)
	assert.Equal(t, root+"/governance-zones/{2}", zones.Get)
	assert.Equal(t, root+"/governance-zones/by-name?startFrom={2}&pageSize={3}", zones.ByName)

	uni := catalog.MoreInformationRelationship.Templates(root)
	assert.Equal(t, root+"/related-elements/{2}/more-information/{3}", uni.Setup)
	assert.Equal(t, root+"/related-elements/{2}/more-information/{3}/delete", uni.ClearBetween)
	assert.Equal(t, root+"/related-elements/{2}/more-information?startFrom={3}&pageSize={4}", uni.List)
	assert.Empty(t, uni.Update)
	assert.Empty(t, uni.Clear)

	multi := catalog.CertificationRelationship.Templates(root)
	assert.Equal(t, root+"/related-elements/{2}/certifications/{3}/instances", multi.Setup)
	assert.Equal(t, root+"/certifications/relationships/{2}/update?isMergeUpdate={3}", multi.Update)
	assert.Equal(t, root+"/certifications/relationships/{2}/delete", multi.Clear)
}

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

// recordingServer answers every request with a generic successful envelope
func recordingServer(t *testing.T) (*httptest.Server, func() []recorded) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []recorded
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		_ = json.Unmarshal(data, &rec.body)

		mu.Lock()
		requests = append(requests, rec)
		mu.Unlock()

		_, _ = w.Write([]byte(`{"relatedHTTPCode":200,"guid":"R1","elementList":[]}`))
	}))
	t.Cleanup(server.Close)

	return server, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), requests...)
	}
}

func TestFacades_BindKindToRequests(t *testing.T) {
	t.Parallel()

	server, requests := recordingServer(t)
	owner, err := catalog.NewAssetOwner(catalog.Config{
		PlatformURL:    server.URL,
		ServerName:     "cocoMDS1",
		ServiceURLName: "asset-owner",
	})
	require.NoError(t, err)
	ctx := context.Background()
	base := "/servers/cocoMDS1/open-metadata/access-services/asset-owner/users/garygeeke"

	props := &api.SubjectAreaProperties{
		ReferenceableProperties: api.ReferenceableProperties{QualifiedName: "subject:finance"},
	}
	_, err = owner.SubjectAreas.Create(ctx, "garygeeke", props)
	require.NoError(t, err)
	assert.Empty(t, props.TypeName, "caller properties are not modified")

	_, err = owner.ExternalReferenceLinks.Link(ctx, "garygeeke", "E1", "X1",
		&api.ExternalReferenceLinkProperties{LinkID: "wiki"})
	require.NoError(t, err)

	require.NoError(t, owner.ValidValuesAssignments.Link(ctx, "garygeeke", "C1", "V1", nil))

	_, err = owner.Appointments.List(ctx, "garygeeke", "P1", 5, 0)
	require.NoError(t, err)

	require.NoError(t, owner.Certifications.Unlink(ctx, "garygeeke", "R9"))

	got := requests()
	require.Len(t, got, 5)

	assert.Equal(t, http.MethodPost, got[0].method)
	assert.Equal(t, base+"/subject-areas", got[0].path)
	assert.Equal(t, "SubjectAreaDefinition", got[0].body["properties"].(map[string]any)["typeName"])

	assert.Equal(t, base+"/related-elements/E1/external-reference-links/X1/instances", got[1].path)
	assert.Equal(t, "ExternalReferenceLink", got[1].body["relationshipName"])
	assert.Equal(t, "wiki", got[1].body["properties"].(map[string]any)["linkId"])

	assert.Equal(t, base+"/related-elements/C1/valid-values-assignment/V1", got[2].path)
	assert.NotContains(t, got[2].body, "properties")

	assert.Equal(t, http.MethodGet, got[3].method)
	assert.Equal(t, base+"/related-elements/P1/person-role-appointments", got[3].path)
	assert.Equal(t, "startFrom=5&pageSize=1000", got[3].query)

	assert.Equal(t, base+"/certifications/relationships/R9/delete", got[4].path)
	assert.Equal(t, "NullRequestBody", got[4].body["class"])
}

func TestAnyElements(t *testing.T) {
	t.Parallel()

	owner, _ := newOwner(t)
	ctx := context.Background()

	valid := owner.Elements(catalog.ValidValueKind)
	guid, err := valid.Create(ctx, user, &api.PropertyMap{"qualifiedName": "vv:yes", "preferredValue": "Y"})
	require.NoError(t, err)

	el, err := valid.Get(ctx, user, guid)
	require.NoError(t, err)
	assert.Equal(t, "ValidValueDefinition", el.Header.TypeName)
	assert.Equal(t, "Y", (*el.Properties)["preferredValue"])
}
