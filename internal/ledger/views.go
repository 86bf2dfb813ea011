package ledger

import (
	"github.com/Veraticus/the-books-must-balance/internal/export"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
)

var paymentMethods = []string{"Carte", "Espèces", "Chèque", "Virement", "Tiers payant"}

// Receipts are the fees collected from patients and insurers.
var Receipts = View{
	ID:              "receipts",
	Title:           "Encaissements",
	Naming:          export.Naming{Base: "encaissements", Dated: true},
	DistributionKey: "act",
	AmountKey:       "amount",
	Panel: grid.FilterPanel{
		SearchKeys:   []string{"patient", "reference", "notes"},
		CategoryKeys: []string{"act", "method"},
		DateKey:      "date",
		AmountKey:    "amount",
	},
	columns: func() []grid.Column {
		return []grid.Column{
			required(date("date", "Date")),
			required(text("patient", "Patient")),
			text("reference", "Référence"),
			choice("act", "Acte", "Consultation", "Visite", "Acte technique", "Certificat"),
			choice("method", "Mode de paiement", paymentMethods...),
			required(money("amount", "Montant")),
			money("insurance", "Part AMO"),
			calculated("patientShare", "Part patient", []string{"amount", "insurance"}, diff("amount", "insurance")),
			notes(),
		}
	},
}

// Expenses are the practice's purchases and running costs.
var Expenses = View{
	ID:              "expenses",
	Title:           "Dépenses",
	Naming:          export.Naming{Base: "depenses"},
	DistributionKey: "category",
	AmountKey:       "totalTTC",
	Panel: grid.FilterPanel{
		SearchKeys:   []string{"supplier", "reference", "notes"},
		CategoryKeys: []string{"category", "method", "status"},
		DateKey:      "date",
		AmountKey:    "totalTTC",
	},
	columns: func() []grid.Column {
		return []grid.Column{
			required(date("date", "Date")),
			required(text("supplier", "Fournisseur")),
			text("reference", "Référence"),
			choice("category", "Catégorie",
				"Fournitures médicales", "Loyer", "Logiciel", "Assurance",
				"Téléphonie", "Déplacements", "Formation", "Autre"),
			choice("method", "Mode de paiement", paymentMethods...),
			required(money("amountHT", "Montant HT")),
			rate("vatRate", "Taux TVA", 20),
			calculated("vatAmount", "TVA", []string{"amountHT", "vatRate"}, percentOf("amountHT", "vatRate")),
			calculated("totalTTC", "Total TTC", []string{"amountHT", "vatAmount"}, sum("amountHT", "vatAmount")),
			money("paid", "Payé"),
			calculated("remaining", "Reste à payer", []string{"totalTTC", "paid"}, outstanding("totalTTC", "paid")),
			status("status", "Statut", []string{"totalTTC", "paid"}, paymentStatus("totalTTC", "paid")),
			share("share", "Part du total", "totalTTC"),
			notes(),
		}
	},
}

// Debts are the practice's loans and leases.
var Debts = View{
	ID:              "debts",
	Title:           "Dettes",
	Naming:          export.Naming{Base: "dettes"},
	DistributionKey: "type",
	AmountKey:       "remaining",
	Panel: grid.FilterPanel{
		SearchKeys:   []string{"creditor", "notes"},
		CategoryKeys: []string{"type", "status"},
		DateKey:      "startDate",
		AmountKey:    "remaining",
	},
	columns: func() []grid.Column {
		return []grid.Column{
			required(text("creditor", "Créancier")),
			choice("type", "Type", "Emprunt bancaire", "Crédit-bail", "Prêt personnel", "Autre"),
			date("startDate", "Début"),
			required(money("principal", "Capital emprunté")),
			rate("rate", "Taux annuel", 0),
			number("months", "Durée (mois)"),
			calculated("monthly", "Mensualité", []string{"principal", "rate", "months"}, annuity("principal", "rate", "months")),
			money("repaid", "Remboursé"),
			calculated("remaining", "Capital restant", []string{"principal", "repaid"}, outstanding("principal", "repaid")),
			status("status", "Statut", []string{"principal", "repaid"}, repaymentStatus("principal", "repaid")),
			notes(),
		}
	},
}

// Taxes are the practice's tax assessments.
var Taxes = View{
	ID:              "taxes",
	Title:           "Impôts",
	Naming:          export.Naming{Base: "impots"},
	DistributionKey: "tax",
	AmountKey:       "amountDue",
	Panel: grid.FilterPanel{
		SearchKeys:   []string{"tax", "period", "notes"},
		CategoryKeys: []string{"tax", "status"},
		DateKey:      "dueDate",
		AmountKey:    "amountDue",
	},
	columns: func() []grid.Column {
		return []grid.Column{
			choice("tax", "Impôt", "Impôt sur le revenu", "CFE", "CSG-CRDS", "TVA", "Taxe foncière", "Autre"),
			required(text("period", "Période")),
			required(date("dueDate", "Échéance")),
			required(money("amountDue", "Montant dû")),
			money("paid", "Payé"),
			calculated("remaining", "Reste à payer", []string{"amountDue", "paid"}, outstanding("amountDue", "paid")),
			status("status", "Statut", []string{"amountDue", "paid"}, paymentStatus("amountDue", "paid")),
			notes(),
		}
	},
}

// Invoices are the fee notes issued to patients, insurers and
// institutions.
var Invoices = View{
	ID:              "invoices",
	Title:           "Factures",
	Naming:          export.Naming{Base: "factures", Dated: true},
	DistributionKey: "payer",
	AmountKey:       "totalTTC",
	Panel: grid.FilterPanel{
		SearchKeys:   []string{"number", "payer", "notes"},
		CategoryKeys: []string{"payer", "status"},
		DateKey:      "date",
		AmountKey:    "totalTTC",
	},
	columns: func() []grid.Column {
		return []grid.Column{
			required(text("number", "Numéro")),
			required(date("date", "Date")),
			choice("payer", "Payeur", "CPAM", "Mutuelle", "Patient", "Établissement", "Autre"),
			text("description", "Désignation"),
			required(money("amountHT", "Montant HT")),
			rate("vatRate", "Taux TVA", 0),
			calculated("vatAmount", "TVA", []string{"amountHT", "vatRate"}, percentOf("amountHT", "vatRate")),
			calculated("totalTTC", "Total TTC", []string{"amountHT", "vatAmount"}, sum("amountHT", "vatAmount")),
			money("paid", "Encaissé"),
			status("status", "Statut", []string{"totalTTC", "paid"}, paymentStatus("totalTTC", "paid")),
			notes(),
		}
	},
}

// Social holds the contributions owed to social security bodies.
var Social = View{
	ID:              "social",
	Title:           "Charges sociales",
	Naming:          export.Naming{Base: "charges-sociales"},
	DistributionKey: "body",
	AmountKey:       "amount",
	Panel: grid.FilterPanel{
		SearchKeys:   []string{"body", "period"},
		CategoryKeys: []string{"body", "status"},
		DateKey:      "dueDate",
		AmountKey:    "amount",
	},
	columns: func() []grid.Column {
		return []grid.Column{
			choice("body", "Organisme", "URSSAF", "CARMF", "CARPIMKO", "CIPAV", "Prévoyance", "Autre"),
			required(text("period", "Période")),
			required(date("dueDate", "Échéance")),
			required(money("amount", "Montant")),
			money("paid", "Payé"),
			calculated("remaining", "Reste à payer", []string{"amount", "paid"}, outstanding("amount", "paid")),
			status("status", "Statut", []string{"amount", "paid"}, paymentStatus("amount", "paid")),
			notes(),
		}
	},
}

// Retrocessions are the fees passed on to locum doctors.
var Retrocessions = View{
	ID:              "retrocessions",
	Title:           "Rétrocessions",
	Naming:          export.Naming{Base: "retrocessions"},
	DistributionKey: "replacement",
	AmountKey:       "retrocession",
	Panel: grid.FilterPanel{
		SearchKeys:   []string{"replacement", "notes"},
		CategoryKeys: []string{"replacement"},
		DateKey:      "date",
		AmountKey:    "retrocession",
	},
	columns: func() []grid.Column {
		return []grid.Column{
			required(date("date", "Date")),
			required(text("replacement", "Remplaçant")),
			text("period", "Période"),
			required(money("fees", "Honoraires encaissés")),
			rate("rate", "Taux de rétrocession", 70),
			calculated("retrocession", "Rétrocession", []string{"fees", "rate"}, percentOf("fees", "rate")),
			calculated("kept", "Part conservée", []string{"fees", "retrocession"}, diff("fees", "retrocession")),
			share("share", "Part du total", "retrocession"),
			notes(),
		}
	},
}

// Assets are the practice's depreciable fixed assets.
var Assets = View{
	ID:              "assets",
	Title:           "Immobilisations",
	Naming:          export.Naming{Base: "immobilisations"},
	DistributionKey: "category",
	AmountKey:       "cost",
	columns: func() []grid.Column {
		return []grid.Column{
			required(text("label", "Désignation")),
			choice("category", "Catégorie", "Matériel médical", "Informatique", "Mobilier", "Véhicule", "Agencement"),
			date("acquired", "Date d'acquisition"),
			required(money("cost", "Coût d'acquisition")),
			withDefault(number("years", "Durée (ans)"), 5.0),
			calculated("annual", "Dotation annuelle", []string{"cost", "years"}, ratio("cost", "years")),
			money("depreciated", "Amortissements cumulés"),
			calculated("netValue", "Valeur nette", []string{"cost", "depreciated"}, outstanding("cost", "depreciated")),
			notes(),
		}
	},
}

func withDefault(col grid.Column, v any) grid.Column {
	col.Default = v
	return col
}
