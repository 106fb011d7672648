package query

// MutationKind names a remote mutation
type MutationKind string

// Mutations
const (
	MutationAddProduct          MutationKind = "addProduct"
	MutationUpdateProduct       MutationKind = "updateProduct"
	MutationUpdateProductMedia  MutationKind = "updateProductMedia"
	MutationAddCategory         MutationKind = "addCategory"
	MutationDeleteCategory      MutationKind = "deleteCategory"
	MutationCreateOrder         MutationKind = "createOrder"
	MutationUpdateOrderStatus   MutationKind = "updateOrderStatus"
	MutationSaveProfile         MutationKind = "saveProfile"
	MutationIncrementViews      MutationKind = "incrementProductViews"
	MutationAddToWishlist       MutationKind = "addToWishlist"
	MutationRemoveFromWishlist  MutationKind = "removeFromWishlist"
	MutationAssignRole          MutationKind = "assignRole"
	MutationSetFeaturedProducts MutationKind = "setFeaturedProducts"
)

// Invalidation lists what a successful mutation makes stale. Keys are dropped as is;
// each PerSubject key is dropped with the mutation subject appended.
type Invalidation struct {
	Keys       []Key
	PerSubject []Key
}

// InvalidationTable is the single source of cache invalidation rules
var InvalidationTable = map[MutationKind]Invalidation{
	MutationAddProduct: {
		Keys: []Key{AllProducts, ActiveProducts, ProductsByCategory, SystemStats},
	},
	MutationUpdateProduct: {
		Keys:       []Key{AllProducts, ActiveProducts, ProductsByCategory, FeaturedProducts},
		PerSubject: []Key{Product},
	},
	MutationUpdateProductMedia: {
		Keys:       []Key{AllProducts, ActiveProducts, ProductsByCategory, FeaturedProducts},
		PerSubject: []Key{Product},
	},
	MutationAddCategory: {
		Keys: []Key{Categories, AllProducts, ActiveProducts},
	},
	MutationDeleteCategory: {
		Keys: []Key{Categories, AllProducts, ActiveProducts, ProductsByCategory},
	},
	MutationCreateOrder: {
		Keys: []Key{MyOrders, AllOrders, ActiveOrders, SystemStats},
	},
	MutationUpdateOrderStatus: {
		Keys:       []Key{AllOrders, MyOrders, ActiveOrders, CompletedOrders, SystemStats},
		PerSubject: []Key{Order},
	},
	MutationSaveProfile: {
		Keys: []Key{CurrentUserProfile},
	},
	MutationIncrementViews: {},
	MutationAddToWishlist: {
		Keys: []Key{Wishlist},
	},
	MutationRemoveFromWishlist: {
		Keys: []Key{Wishlist},
	},
	MutationAssignRole: {
		Keys: []Key{IsAdmin, CallerRole},
	},
	MutationSetFeaturedProducts: {
		Keys: []Key{FeaturedProducts},
	},
}

// KeysFor resolves the keys a mutation of kind on subject invalidates
func KeysFor(kind MutationKind, subject string) []Key {
	inv := InvalidationTable[kind]
	keys := make([]Key, 0, len(inv.Keys)+len(inv.PerSubject))
	keys = append(keys, inv.Keys...)
	if subject != "" {
		for _, k := range inv.PerSubject {
			keys = append(keys, k.With(subject))
		}
	}
	return keys
}
