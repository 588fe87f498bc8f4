package accounts

import "github.com/eventup/accounts/internal/domain"

// unknownRolePriority sorts roles outside the known set after everything else.
const unknownRolePriority = 1 << 30

var rolePriority = map[domain.Role]int{
	domain.RoleAdmin:       0,
	domain.RoleOrganizer:   1,
	domain.RoleParticipant: 2,
}

// RolePriority returns the numeric rank of a role, lower meaning higher
// precedence. Unknown roles rank last.
func RolePriority(role domain.Role) int {
	if p, ok := rolePriority[role]; ok {
		return p
	}
	return unknownRolePriority
}

// SelectProfile picks the profile that should back an issued token.
//
// Active profiles win by priority. When no profile is active the
// highest-precedence profile is returned regardless of its flag, so the user
// still obtains a token; callers must honor the is_active claim when deciding
// what that token authorizes.
func SelectProfile(profiles []domain.Profile) (domain.Profile, error) {
	if len(profiles) == 0 {
		return domain.Profile{}, ErrNoProfiles
	}

	candidates := make([]domain.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.IsActive {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = profiles
	}

	best := candidates[0]
	for _, p := range candidates[1:] {
		if RolePriority(p.Role) < RolePriority(best.Role) {
			best = p
		}
	}
	return best, nil
}
