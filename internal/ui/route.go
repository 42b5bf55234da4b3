package ui

import tea "github.com/charmbracelet/bubbletea"

// Route identifies a top-level screen.
type Route int

const (
	RouteProducts Route = iota
	RouteProductDetail
	RouteLogin
	RouteRegister
	RouteCart
	RouteWishlist
	RouteOrders
	RouteNotifications
	RouteProfile
	RouteMerchantProducts
	RouteMerchantStore
	RouteProductNew
	RouteProductEdit
	RouteMerchantOrders
	RouteHelp
	RouteCommand
	RouteSettings
)

// Access is who may open a route.
type Access int

const (
	Public Access = iota
	LoggedIn
	CustomerOnly
	MerchantOnly
)

// Access returns who may open r.
func (r Route) Access() Access {
	switch r {
	case RouteCart, RouteWishlist, RouteOrders:
		return CustomerOnly
	case RouteMerchantProducts, RouteProductNew, RouteProductEdit, RouteMerchantOrders:
		return MerchantOnly
	case RouteNotifications, RouteProfile:
		return LoggedIn
	default:
		return Public
	}
}

// Allowed reports whether a user with the given flags may open r.
func (r Route) Allowed(loggedIn, customer, merchant bool) bool {
	switch r.Access() {
	case LoggedIn:
		return loggedIn
	case CustomerOnly:
		return customer
	case MerchantOnly:
		return merchant
	default:
		return true
	}
}

// Title is the header label of r.
func (r Route) Title() string {
	switch r {
	case RouteProducts:
		return "Products"
	case RouteProductDetail:
		return "Product"
	case RouteLogin:
		return "Login"
	case RouteRegister:
		return "Register"
	case RouteCart:
		return "Cart"
	case RouteWishlist:
		return "Wishlist"
	case RouteOrders:
		return "My Orders"
	case RouteNotifications:
		return "Notifications"
	case RouteProfile:
		return "Profile"
	case RouteMerchantProducts:
		return "My Products"
	case RouteMerchantStore:
		return "Storefront"
	case RouteProductNew:
		return "New Product"
	case RouteProductEdit:
		return "Edit Product"
	case RouteMerchantOrders:
		return "Incoming Orders"
	case RouteHelp:
		return "Help"
	case RouteCommand:
		return "Command"
	case RouteSettings:
		return "Settings"
	default:
		return ""
	}
}

// NavigateMsg asks the root model to switch screens. ProductID and
// MerchantID carry the route parameter when the route needs one.
type NavigateMsg struct {
	Route      Route
	ProductID  int64
	MerchantID int64
}

// Navigate returns a command that emits a NavigateMsg for r.
func Navigate(r Route) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: r}
	}
}

// OpenProduct returns a command that opens the detail screen of id.
func OpenProduct(id int64) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: RouteProductDetail, ProductID: id}
	}
}

// BackMsg asks the root model to return to the previous screen.
type BackMsg struct{}

// Back returns a command that emits BackMsg.
func Back() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}
