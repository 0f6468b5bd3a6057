package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 測試簽發後解析，claims 內容一致
func TestGenerateAndParseJWT(t *testing.T) {
	tokenStr, err := GenerateJWT("member-1", string(RoleMember), "test")
	assert.NoError(t, err)

	claims, err := ParseJWT(tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, "member-1", claims.MemberID)
	assert.False(t, claims.IsAdmin())
}

// 測試 admin role 的 token 帶有 admin capability
func TestClaimsIsAdmin(t *testing.T) {
	tokenStr, err := GenerateJWT("admin-1", string(RoleAdmin), "test")
	assert.NoError(t, err)

	claims, err := ParseJWT(tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, string(RoleAdmin), claims.Role)
	assert.True(t, claims.IsAdmin())
}
