package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
// waiter 覆盖值台日常操作，manager 继承 waiter 并追加审核与管理面
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "waiter",
			Policies: []Policy{
				{Object: "/staff/orders", Action: "GET"},
				{Object: "/staff/orders/:id", Action: "GET"},
				{Object: "/staff/orders/:id/claim", Action: "POST"},
				{Object: "/staff/claims", Action: "GET"},
				{Object: "/staff/claims/:id", Action: "GET"},
				{Object: "/staff/claims/:id/deliver", Action: "POST"},
				{Object: "/staff/sessions", Action: "*"},
				{Object: "/staff/sessions/:id", Action: "GET"},
				{Object: "/staff/sessions/:id/paying", Action: "POST"},
				{Object: "/staff/sessions/:id/close", Action: "POST"},
				{Object: "/staff/losses", Action: "GET"},
				{Object: "/staff/losses/:id", Action: "GET"},
				{Object: "/staff/losses/report", Action: "POST"},
				{Object: "/staff/notifications", Action: "GET"},
				{Object: "/staff/notifications/:id/read", Action: "POST"},
				{Object: "/staff/leaderboard", Action: "GET"},
			},
		},
		{
			Role:     "manager",
			Inherits: []string{"waiter"},
			Policies: []Policy{
				{Object: "/staff/losses/:id/review", Action: "POST"},
				{Object: "/staff/blacklist-flags", Action: "GET"},
				{Object: "/staff/staff", Action: "*"},
				{Object: "/staff/staff/:id", Action: "*"},
				{Object: "/staff/tables", Action: "*"},
				{Object: "/staff/tables/:id", Action: "*"},
				{Object: "/staff/tables/:id/code", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), NormalizeAction(policy.Action)); err != nil {
				return fmt.Errorf("grant builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
