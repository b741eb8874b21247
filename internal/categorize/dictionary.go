// Package categorize assigns spending categories to parsed transactions
// using a layered decision: exact merchant match, user rules, learned fuzzy
// patterns, keyword hints, and finally a default.
package categorize

import (
	"strings"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/model"
)

// merchantCategories maps known merchant names (folded: lowercase, no
// accents) to categories. Built once, read-only afterwards.
var merchantCategories = map[string]model.Category{
	// Supermarkets
	"almacen exito": model.CategoryGroceries,
	"exito":         model.CategoryGroceries,
	"carulla":       model.CategoryGroceries,
	"jumbo":         model.CategoryGroceries,
	"olimpica":      model.CategoryGroceries,
	"tiendas d1":    model.CategoryGroceries,
	"d1":            model.CategoryGroceries,
	"ara":           model.CategoryGroceries,
	"makro":         model.CategoryGroceries,
	"pricesmart":    model.CategoryGroceries,

	// Restaurants and delivery
	"rappi":            model.CategoryRestaurants,
	"mcdonalds":        model.CategoryRestaurants,
	"el corral":        model.CategoryRestaurants,
	"frisby":           model.CategoryRestaurants,
	"kokoriko":         model.CategoryRestaurants,
	"crepes & waffles": model.CategoryRestaurants,
	"juan valdez":      model.CategoryRestaurants,

	// Transport and fuel
	"uber":   model.CategoryTransport,
	"didi":   model.CategoryTransport,
	"cabify": model.CategoryTransport,
	"terpel": model.CategoryFuel,
	"primax": model.CategoryFuel,
	"biomax": model.CategoryFuel,

	// Utilities and telecom
	"epm":      model.CategoryUtilities,
	"codensa":  model.CategoryUtilities,
	"enel":     model.CategoryUtilities,
	"vanti":    model.CategoryUtilities,
	"claro":    model.CategoryUtilities,
	"movistar": model.CategoryUtilities,
	"tigo":     model.CategoryUtilities,
	"etb":      model.CategoryUtilities,

	// Health
	"farmatodo":  model.CategoryHealth,
	"cruz verde": model.CategoryHealth,
	"la rebaja":  model.CategoryHealth,
	"colsanitas": model.CategoryHealth,
	"sura":       model.CategoryHealth,

	// Shopping
	"falabella":    model.CategoryShopping,
	"homecenter":   model.CategoryShopping,
	"alkosto":      model.CategoryShopping,
	"ktronix":      model.CategoryShopping,
	"panamericana": model.CategoryShopping,
	"amazon":       model.CategoryShopping,
	"mercadolibre": model.CategoryShopping,

	// Entertainment and subscriptions
	"cine colombia": model.CategoryEntertainment,
	"cinemark":      model.CategoryEntertainment,
	"netflix":       model.CategorySubscriptions,
	"spotify":       model.CategorySubscriptions,
	"disney plus":   model.CategorySubscriptions,
	"hbo max":       model.CategorySubscriptions,

	// Travel
	"avianca": model.CategoryTravel,
	"latam":   model.CategoryTravel,
	"wingo":   model.CategoryTravel,
	"booking": model.CategoryTravel,
	"airbnb":  model.CategoryTravel,
}

// keywordEntry pairs a folded substring with the category it hints at.
type keywordEntry struct {
	keyword  string
	category model.Category
}

// keywordCategories is scanned in order; the first keyword contained in the
// transaction text wins. More specific phrases sit above generic ones.
var keywordCategories = []keywordEntry{
	{"cuota de manejo", model.CategoryFinancialFees},
	{"comision", model.CategoryFinancialFees},
	{"supermercado", model.CategoryGroceries},
	{"mercado", model.CategoryGroceries},
	{"restaurante", model.CategoryRestaurants},
	{"pizzeria", model.CategoryRestaurants},
	{"panaderia", model.CategoryRestaurants},
	{"cafeteria", model.CategoryRestaurants},
	{"domicilio", model.CategoryRestaurants},
	{"gasolina", model.CategoryFuel},
	{"estacion de servicio", model.CategoryFuel},
	{"peaje", model.CategoryTransport},
	{"taxi", model.CategoryTransport},
	{"parqueadero", model.CategoryTransport},
	{"transmilenio", model.CategoryTransport},
	{"drogueria", model.CategoryHealth},
	{"farmacia", model.CategoryHealth},
	{"clinica", model.CategoryHealth},
	{"universidad", model.CategoryEducation},
	{"colegio", model.CategoryEducation},
	{"matricula", model.CategoryEducation},
	{"cine", model.CategoryEntertainment},
	{"hotel", model.CategoryTravel},
	{"aerolinea", model.CategoryTravel},
	{"arriendo", model.CategoryRent},
	{"nomina", model.CategorySalary},
	{"salario", model.CategorySalary},
	{"bolsillo", model.CategorySavings},
	{"ahorro", model.CategorySavings},
	{"retiro", model.CategoryCashWithdrawal},
	{"cajero", model.CategoryCashWithdrawal},
}

// LookupMerchant returns the category for an exactly known merchant name.
// The comparison is case- and accent-normalized.
func LookupMerchant(name string) (model.Category, bool) {
	folded := common.FoldAccents(name)
	if folded == "" {
		return "", false
	}
	category, ok := merchantCategories[folded]
	return category, ok
}

// LookupKeyword returns the category of the first dictionary keyword
// contained in the text.
func LookupKeyword(text string) (model.Category, bool) {
	folded := common.FoldAccents(text)
	if folded == "" {
		return "", false
	}
	for _, entry := range keywordCategories {
		if strings.Contains(folded, entry.keyword) {
			return entry.category, true
		}
	}
	return "", false
}
