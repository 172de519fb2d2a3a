// Package filter narrows fetched collections in memory. Filters never mutate
// their input and keep the original order.
package filter

import (
	"strings"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

// All is the "no selection" value for category and status filters.
const All = "all"

// Apply returns the items for which keep is true, in input order.
func Apply[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Matches reports whether term is a case-insensitive substring of any field.
// An empty term matches everything.
func Matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// selected reports whether value passes an exact-match selection, where ""
// and All select everything.
func selected(selection, value string) bool {
	return selection == "" || selection == All || selection == value
}

// ServiceQuery is the services view's search box and category dropdown.
type ServiceQuery struct {
	Search   string `json:"search" query:"search"`
	Category string `json:"category" query:"category"`
}

// Services filters by name/description substring and exact category.
func Services(items []domain.Service, q ServiceQuery) []domain.Service {
	return Apply(items, func(s domain.Service) bool {
		return selected(q.Category, s.Category) && Matches(q.Search, s.Name, s.Description)
	})
}

// Categories returns the distinct non-empty categories in first-seen order.
func Categories(items []domain.Service) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0)
	for _, s := range items {
		if s.Category == "" {
			continue
		}
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		out = append(out, s.Category)
	}
	return out
}

// OrderQuery is the orders view's search box and status dropdown.
type OrderQuery struct {
	Search string `json:"search" query:"search"`
	Status string `json:"status" query:"status"`
}

// Orders filters by service name or client username and exact status.
func Orders(items []domain.OrderWithDetails, q OrderQuery) []domain.OrderWithDetails {
	return Apply(items, func(o domain.OrderWithDetails) bool {
		return selected(q.Status, string(o.Status)) && Matches(q.Search, o.Service.Name, o.Client.Username)
	})
}

// UserQuery is the admin users tab filter.
type UserQuery struct {
	Search string `json:"search" query:"search"`
	Role   string `json:"role" query:"role"`
}

// Users filters by username/email substring and exact role.
func Users(items []domain.User, q UserQuery) []domain.User {
	return Apply(items, func(u domain.User) bool {
		return selected(q.Role, string(u.Role)) && Matches(q.Search, u.Username, u.Email)
	})
}
