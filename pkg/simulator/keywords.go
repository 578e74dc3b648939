package simulator

// Category is a canned reply topic.
type Category string

const (
	CategoryMenu      Category = "menu"
	CategoryBilling   Category = "billing"
	CategoryTechnical Category = "technical"
	CategoryDelivery  Category = "delivery"
	CategorySales     Category = "sales"
	CategoryGeneral   Category = "general"
)

// Categories lists the topics in matching order. General is the fallback.
var Categories = []Category{CategoryMenu, CategoryBilling, CategoryTechnical, CategoryDelivery, CategorySales, CategoryGeneral}

// keywords maps each topic to English and Swedish keywords.
var keywords = map[Category][]string{
	CategoryMenu: {
		"menu", "food", "dish", "lunch", "dinner", "vegan", "allergy",
		"meny", "mat", "middag", "rätt", "rätter", "allergi",
	},
	CategoryBilling: {
		"bill", "invoice", "payment", "pay", "refund", "charge", "receipt",
		"faktura", "betala", "betalning", "återbetalning", "kvitto", "avgift",
	},
	CategoryTechnical: {
		"error", "bug", "login", "password", "crash", "broken", "not working", "technical",
		"fel", "inloggning", "lösenord", "krasch", "trasig", "fungerar inte", "teknisk",
	},
	CategoryDelivery: {
		"delivery", "shipping", "track", "package", "arrive", "courier",
		"leverans", "frakt", "paket", "spåra", "skicka", "bud",
	},
	CategorySales: {
		"buy", "price", "purchase", "quote", "discount", "offer", "sales",
		"köpa", "pris", "offert", "rabatt", "erbjudande", "försäljning",
	},
	CategoryGeneral: {
		"hello", "hi", "help", "question", "hej", "hjälp", "fråga",
	},
}

// swedishMarkers flags a message as Swedish when any of them occurs.
var swedishMarkers = []string{
	"hej", "tack", "jag", "vill", "hur", "vad", "och", "inte", "kan", "är",
	"min", "mitt", "hjälp", "snälla", "varför", "när", "å", "ä", "ö",
}

// Reply templates per topic.
var templates = map[Category]struct{ English, Swedish string }{
	CategoryMenu: {
		English: "Here is our menu for today. Would you like vegetarian or allergy information?",
		Swedish: "Här är dagens meny. Vill du ha information om vegetariskt eller allergier?",
	},
	CategoryBilling: {
		English: "I can help with billing. Please share your invoice number and I'll connect you with our billing team.",
		Swedish: "Jag kan hjälpa dig med fakturor. Ange ditt fakturanummer så kopplar jag dig till vår ekonomiavdelning.",
	},
	CategoryTechnical: {
		English: "Sorry you're having trouble. Our technical support will look into it. Can you describe the problem?",
		Swedish: "Tråkigt att du har problem. Vår tekniska support tittar på det. Kan du beskriva felet?",
	},
	CategoryDelivery: {
		English: "Let me check on your delivery. Do you have a tracking or order number?",
		Swedish: "Jag kollar din leverans. Har du ett spårnings- eller ordernummer?",
	},
	CategorySales: {
		English: "Great that you're interested! Our sales team can give you a quote right away.",
		Swedish: "Kul att du är intresserad! Vårt säljteam kan ge dig en offert direkt.",
	},
	CategoryGeneral: {
		English: "Thanks for your message! How can I help you today?",
		Swedish: "Tack för ditt meddelande! Hur kan jag hjälpa dig idag?",
	},
}
