package model

// PrimaryCategory groups categories for display. It carries no behavior.
type PrimaryCategory string

// Primary category constants.
const (
	PrimaryEssentials PrimaryCategory = "ESSENTIALS"
	PrimaryLifestyle  PrimaryCategory = "LIFESTYLE"
	PrimaryFinancial  PrimaryCategory = "FINANCIAL"
	PrimaryIncome     PrimaryCategory = "INCOME"
	PrimaryOther      PrimaryCategory = "OTHER"
)

// Category is the closed set of spending categories a transaction can be
// assigned to.
type Category string

// Category constants.
const (
	CategoryGroceries      Category = "GROCERIES"
	CategoryRestaurants    Category = "RESTAURANTS"
	CategoryTransport      Category = "TRANSPORT"
	CategoryFuel           Category = "FUEL"
	CategoryUtilities      Category = "UTILITIES"
	CategoryRent           Category = "RENT"
	CategoryHealth         Category = "HEALTH"
	CategoryEducation      Category = "EDUCATION"
	CategoryShopping       Category = "SHOPPING"
	CategoryEntertainment  Category = "ENTERTAINMENT"
	CategorySubscriptions  Category = "SUBSCRIPTIONS"
	CategoryTravel         Category = "TRAVEL"
	CategoryCashWithdrawal Category = "CASH_WITHDRAWAL"
	CategoryFinancialFees  Category = "FINANCIAL_FEES"
	CategoryOwnTransfer    Category = "OWN_TRANSFER"
	CategorySavings        Category = "SAVINGS"
	CategorySalary         Category = "SALARY"
	CategoryOtherIncome    Category = "OTHER_INCOME"
	CategoryUncategorized  Category = "UNCATEGORIZED"
)

type categoryInfo struct {
	display  string
	primary  PrimaryCategory
	excluded bool // excluded from spending totals
}

var categories = map[Category]categoryInfo{
	CategoryGroceries:      {"Mercado", PrimaryEssentials, false},
	CategoryRestaurants:    {"Restaurantes", PrimaryLifestyle, false},
	CategoryTransport:      {"Transporte", PrimaryEssentials, false},
	CategoryFuel:           {"Combustible", PrimaryEssentials, false},
	CategoryUtilities:      {"Servicios públicos", PrimaryEssentials, false},
	CategoryRent:           {"Arriendo", PrimaryEssentials, false},
	CategoryHealth:         {"Salud", PrimaryEssentials, false},
	CategoryEducation:      {"Educación", PrimaryEssentials, false},
	CategoryShopping:       {"Compras", PrimaryLifestyle, false},
	CategoryEntertainment:  {"Entretenimiento", PrimaryLifestyle, false},
	CategorySubscriptions:  {"Suscripciones", PrimaryLifestyle, false},
	CategoryTravel:         {"Viajes", PrimaryLifestyle, false},
	CategoryCashWithdrawal: {"Retiros", PrimaryFinancial, false},
	CategoryFinancialFees:  {"Cuotas y comisiones", PrimaryFinancial, false},
	CategoryOwnTransfer:    {"Transferencias propias", PrimaryFinancial, true},
	CategorySavings:        {"Ahorro", PrimaryFinancial, true},
	CategorySalary:         {"Salario", PrimaryIncome, true},
	CategoryOtherIncome:    {"Otros ingresos", PrimaryIncome, true},
	CategoryUncategorized:  {"Sin categoría", PrimaryOther, false},
}

// categoryOrder fixes the presentation order of the closed set.
var categoryOrder = []Category{
	CategoryGroceries, CategoryRestaurants, CategoryTransport, CategoryFuel,
	CategoryUtilities, CategoryRent, CategoryHealth, CategoryEducation,
	CategoryShopping, CategoryEntertainment, CategorySubscriptions,
	CategoryTravel, CategoryCashWithdrawal, CategoryFinancialFees,
	CategoryOwnTransfer, CategorySavings, CategorySalary,
	CategoryOtherIncome, CategoryUncategorized,
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// DisplayName returns the human-facing (Spanish) name for the category.
func (c Category) DisplayName() string {
	if info, ok := categories[c]; ok {
		return info.display
	}
	return string(c)
}

// Primary returns the display grouping the category belongs to.
func (c Category) Primary() PrimaryCategory {
	if info, ok := categories[c]; ok {
		return info.primary
	}
	return PrimaryOther
}

// ExcludedFromTotals reports whether the category is left out of spending
// totals (income, own transfers, savings movements).
func (c Category) ExcludedFromTotals() bool {
	if info, ok := categories[c]; ok {
		return info.excluded
	}
	return false
}

// AllCategories returns every category in presentation order.
func AllCategories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}
