package routes

// Page names
const (
	PageCreateEvent      = "createEvent"
	PageEditEvent        = "editEvent"
	PageCreateEventOrder = "createEventOrder"
	PageEvent            = "event"
	PageEvents           = "events"
	PageButton           = "button"
	PageSearch           = "search"
	PageRedeemed         = "redeemed"
	PageCreateOrder      = "createOrder"
	PageOrderTier        = "orderTier"
	PageCollective       = "collective"
)

// Asset names
const (
	AssetDonateButtonImage  = "donateButtonImage"
	AssetDonateButtonScript = "donateButtonScript"
)

// PageDefinitions is the page route table. Order matters: /:slug and / are
// catch-alls and must stay after every pattern they would shadow.
var PageDefinitions = []Definition{
	{PageCreateEvent, "/:collectiveSlug/events/(new|create)"},
	{PageEditEvent, "/:collectiveSlug/events/:eventSlug/edit"},
	{PageCreateEventOrder, "/:collectiveSlug/events/:eventSlug/order/:TierId(\\d+)?"},
	{PageEvent, "/:collectiveSlug/events/:eventSlug"},
	{PageEvents, "/:collectiveSlug/events"},
	{PageButton, "/:collectiveSlug/donate/button"},
	{PageSearch, "/search"},
	{PageRedeemed, "/redeemed"},
	{PageCreateOrder, "/:collectiveSlug/:verb(contribute|donate|pay)/:amount(\\d+)?/:interval(month|monthly|year|yearly)?"},
	{PageOrderTier, "/:collectiveSlug/order/:TierId(\\d+)"},
	{PageCollective, "/:slug"},
	{PageEvents, "/"},
}

// AssetDefinitions are served before page routes
var AssetDefinitions = []Definition{
	{AssetDonateButtonImage, "/:collectiveSlug/donate/button:size(|@2x).png"},
	{AssetDonateButtonScript, "/:collectiveSlug/donate/button.js"},
}

// Pages compiles PageDefinitions
func Pages() *Table {
	return MustTable(PageDefinitions...)
}

// Assets compiles AssetDefinitions
func Assets() *Table {
	return MustTable(AssetDefinitions...)
}
