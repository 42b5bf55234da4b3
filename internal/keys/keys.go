package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down     key.Binding
	Up       key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Sections
	GoProducts      key.Binding
	GoCart          key.Binding
	GoWishlist      key.Binding
	GoOrders        key.Binding
	GoNotifications key.Binding
	GoProfile       key.Binding
	Login           key.Binding
	ToggleTheme     key.Binding

	// Browsing
	CycleSort     key.Binding
	CycleCategory key.Binding
	CycleFilter   key.Binding
	ToggleHistory key.Binding

	// Actions
	Increment   key.Binding
	Decrement   key.Binding
	AddToCart   key.Binding
	Wishlist    key.Binding
	Remove      key.Binding
	Checkout    key.Binding
	CancelOrder key.Binding
	SetStatus   key.Binding
	MarkRead    key.Binding
	MarkAllRead key.Binding
	New         key.Binding
	Edit        key.Binding
	Upload      key.Binding
	Storefront  key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "pgdown"),
			key.WithHelp("]", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "pgup"),
			key.WithHelp("[", "previous page"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		GoProducts: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "products"),
		),
		GoCart: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "cart / my products"),
		),
		GoWishlist: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "wishlist"),
		),
		GoOrders: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "orders"),
		),
		GoNotifications: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "notifications"),
		),
		GoProfile: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "profile"),
		),
		Login: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "login / logout"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "toggle theme"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle sort"),
		),
		CycleCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cycle category"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle status filter"),
		),
		ToggleHistory: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "active / history"),
		),
		Increment: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "less"),
		),
		AddToCart: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add to cart"),
		),
		Wishlist: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "wishlist"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		Checkout: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "checkout"),
		),
		CancelOrder: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel order"),
		),
		SetStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "set status"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark read"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "mark all read"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upload photo"),
		),
		Storefront: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "merchant storefront"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage, k.Select, k.Back, k.Quit},
		{k.GoProducts, k.GoCart, k.GoWishlist, k.GoOrders, k.GoNotifications, k.GoProfile},
		{k.Search, k.Command, k.Help, k.Refresh, k.Login, k.ToggleTheme},
		{k.CycleSort, k.CycleCategory, k.CycleFilter, k.ToggleHistory},
		{k.Increment, k.Decrement, k.AddToCart, k.Wishlist, k.Remove, k.Checkout},
		{k.CancelOrder, k.SetStatus, k.MarkRead, k.MarkAllRead},
		{k.New, k.Edit, k.Upload, k.Storefront},
	}
}
