package auth

import (
	"fmt"
)

// Role 用户角色，封闭枚举
// 身份源返回的角色字符串只在此处解析一次，未知值显式报错而非静默降级为donor
type Role string

const (
	RoleDonor     Role = "donor"     // 捐赠人
	RoleNgoOwner  Role = "ngo_owner" // 机构负责人
	RoleNgoEditor Role = "ngo_editor" // 机构编辑
	RoleModerator Role = "moderator" // 审核员
	RoleAdmin     Role = "admin"     // 管理员
)

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDonor, RoleNgoOwner, RoleNgoEditor, RoleModerator, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("未知的用户角色: %q", s)
	}
}

// IsNgoRole 是否机构侧角色
func (r Role) IsNgoRole() bool {
	return r == RoleNgoOwner || r == RoleNgoEditor
}

// IsAdminRole 是否管理侧角色
func (r Role) IsAdminRole() bool {
	return r == RoleAdmin || r == RoleModerator
}
