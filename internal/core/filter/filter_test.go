package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

func tenServices() []domain.Service {
	names := []string{"Plumbing", "House Cleaning", "Dog Walking", "Tutoring", "Deep Cleaning",
		"Gardening", "Painting", "Moving", "Tax Help", "Photography"}
	out := make([]domain.Service, len(names))
	for i, n := range names {
		cat := "home"
		if i%2 == 1 {
			cat = "personal"
		}
		out[i] = domain.Service{ID: int64(i + 1), Name: n, Description: fmt.Sprintf("service %d", i+1), Category: cat}
	}
	return out
}

func TestServices_SearchKeepsOrder(t *testing.T) {
	items := tenServices()
	got := Services(items, ServiceQuery{Search: "cleaning"})

	assert.Len(t, got, 2)
	assert.Equal(t, "House Cleaning", got[0].Name)
	assert.Equal(t, "Deep Cleaning", got[1].Name)
	assert.Len(t, items, 10, "input must not be modified")
	assert.Equal(t, "Plumbing", items[0].Name)
}

func TestServices_SearchMatchesDescription(t *testing.T) {
	got := Services(tenServices(), ServiceQuery{Search: "SERVICE 10"})
	assert.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].ID)
}

func TestServices_Category(t *testing.T) {
	items := tenServices()
	assert.Len(t, Services(items, ServiceQuery{Category: "personal"}), 5)
	assert.Len(t, Services(items, ServiceQuery{Category: All}), 10)
	assert.Len(t, Services(items, ServiceQuery{}), 10)
	assert.Empty(t, Services(items, ServiceQuery{Category: "Home"}), "category match is exact")

	got := Services(items, ServiceQuery{Search: "cleaning", Category: "home"})
	assert.Len(t, got, 1)
	assert.Equal(t, "Deep Cleaning", got[0].Name)
}

func TestServices_NoMatchIsEmptyNotNil(t *testing.T) {
	got := Services(tenServices(), ServiceQuery{Search: "zzz"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCategories_FirstSeenOrder(t *testing.T) {
	items := []domain.Service{
		{Category: "b"}, {Category: "a"}, {Category: ""}, {Category: "b"}, {Category: "c"},
	}
	assert.Equal(t, []string{"b", "a", "c"}, Categories(items))
	assert.Equal(t, []string{}, Categories(nil))
}

func TestOrders(t *testing.T) {
	items := []domain.OrderWithDetails{
		{Order: domain.Order{ID: 1, Status: domain.OrderPending}, Service: domain.Service{Name: "Plumbing"}, Client: domain.User{Username: "carla"}},
		{Order: domain.Order{ID: 2, Status: domain.OrderPaid}, Service: domain.Service{Name: "Painting"}, Client: domain.User{Username: "pablo"}},
		{Order: domain.Order{ID: 3, Status: domain.OrderPending}, Service: domain.Service{Name: "Moving"}, Client: domain.User{Username: "paula"}},
	}

	ids := func(in []domain.OrderWithDetails) []int64 {
		out := []int64{}
		for _, o := range in {
			out = append(out, o.ID)
		}
		return out
	}

	assert.Equal(t, []int64{2, 3}, ids(Orders(items, OrderQuery{Search: "PA"})))
	assert.Equal(t, []int64{1, 3}, ids(Orders(items, OrderQuery{Status: "pending"})))
	assert.Equal(t, []int64{3}, ids(Orders(items, OrderQuery{Search: "paula", Status: "pending"})))
	assert.Equal(t, []int64{1, 2, 3}, ids(Orders(items, OrderQuery{Status: All})))
}

func TestUsers(t *testing.T) {
	items := []domain.User{
		{ID: 1, Username: "root", Email: "root@example.com", Role: domain.RoleAdmin},
		{ID: 2, Username: "carla", Email: "carla@shop.io", Role: domain.RoleClient},
		{ID: 3, Username: "wanda", Email: "wanda@example.com", Role: domain.RoleWorker},
	}
	assert.Len(t, Users(items, UserQuery{Search: "example"}), 2)
	assert.Len(t, Users(items, UserQuery{Role: "client"}), 1)
	assert.Len(t, Users(items, UserQuery{}), 3)
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("", "anything"))
	assert.True(t, Matches(""))
	assert.True(t, Matches("ab", "xx", "zABz"))
	assert.False(t, Matches("ab", "xx", "yy"))
	assert.False(t, Matches("ab"))
}
