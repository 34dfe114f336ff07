package dynamo

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nitrmart-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "username"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"email":      "a@nitrkl.ac.in",
		"first_name": "Alice",
		"username":   "alice",
	}
	// Call twice to verify determinism.
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: email < first_name < username
	assert.Equal(t, "email", ue1.Names["#f0"])
	assert.Equal(t, "first_name", ue1.Names["#f1"])
	assert.Equal(t, "username", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"is_sold": true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_NilRemoves(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"faculty": nil, "role": "student"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f1 = :v1 REMOVE #f0", ue.Expr)
	assert.Equal(t, "faculty", ue.Names["#f0"])
	assert.Len(t, ue.Values, 1)

	ue, err = buildUpdateExpr(map[string]interface{}{"roll_no": nil})
	require.NoError(t, err)
	assert.Equal(t, "REMOVE #f0", ue.Expr)
	assert.Nil(t, ue.Values)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestCursor_RoundTrip(t *testing.T) {
	key := map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberS{Value: "01HX"},
		"status":     &types.AttributeValueMemberS{Value: statusAvailable},
		"posted_at":  &types.AttributeValueMemberS{Value: "2026-01-02T03:04:05Z"},
	}
	c, err := encodeCursor(key)
	require.NoError(t, err)
	require.NotEmpty(t, c)

	back, err := decodeCursor(c)
	require.NoError(t, err)
	assert.Equal(t, key, back)

	empty, err := encodeCursor(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodeCursor_Rejects(t *testing.T) {
	for _, c := range []string{"!!!", "bm90LWpzb24", "e30"} {
		_, err := decodeCursor(c)
		assert.True(t, errors.Is(err, domain.ErrBadRequest), c)
	}
}
