package domain

type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

const (
	RoleAdmin   = "ADMIN"
	RoleWaiter  = "WAITER"
	RoleCashier = "CASHIER"
)

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
