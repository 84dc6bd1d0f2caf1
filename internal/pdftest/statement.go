package pdftest

// Row is one printed transaction row. Extra cells (reward points, EMI
// markers, foreign currency) are drawn between the description and amount
// columns.
type Row struct {
	Date     string
	Merchant string
	Extra    string
	Amount   string
	Suffix   string
}

// Statement lays out a card statement in the style of an HDFC Bank
// e-statement: title line, holder and masked card number, the credit limit
// block and one or more transaction tables.
type Statement struct {
	Title          string
	Holder         string
	MaskedNumber   string
	TotalLimit     string
	AvailableLimit string
	Rows           []Row

	// InlineLimit prints the available limit beside its label instead of
	// beneath it.
	InlineLimit bool
	// OmitTable drops the transaction table header and rows.
	OmitTable bool
	// RowsPerPage starts a new page, with a repeated header, after this
	// many rows. Defaults to 25.
	RowsPerPage int
}

// Column positions in points.
const (
	colLeft     = 40
	colMerchant = 160
	colExtra    = 380
	colAmount   = 450
	colSuffix   = 530
	colMiddle   = 220
	colRight    = 400
)

// Sample returns a statement with one charge and one payment:
// 1500.75 at AMAZON PAY INDIA on 08-Oct-2025 and a payment of 5000.00 on
// 10-Oct-2025, card ending 1234.
func Sample() Statement {
	return Statement{
		Title:          "Millennia HDFC Bank Credit Card Statement",
		Holder:         "RAHUL KUMAR SHARMA",
		MaskedNumber:   "5522 60XX XXXX 1234",
		TotalLimit:     "C3,00,000.00",
		AvailableLimit: "C1,45,000.00",
		Rows: []Row{
			{Date: "08/10/2025 | 11:58", Merchant: "AMAZON PAY INDIA", Amount: "C1,500.75"},
			{Date: "10/10/2025", Merchant: "PAYMENT RECEIVED", Amount: "C5,000.00", Suffix: "Cr"},
		},
	}
}

// Document renders the statement, encrypted with password when it is set.
func (s Statement) Document(password string) Document {
	perPage := s.RowsPerPage
	if perPage <= 0 {
		perPage = 25
	}

	first := []Text{
		{X: colLeft, Y: 800, S: s.Title},
		{X: colLeft, Y: 770, S: s.Holder},
		{X: 300, Y: 770, S: "Credit Card No. " + s.MaskedNumber},
	}
	if s.InlineLimit {
		first = append(first,
			Text{X: colLeft, Y: 740, S: "AVAILABLE CREDIT LIMIT"},
			Text{X: colMiddle, Y: 740, S: s.AvailableLimit},
		)
	} else {
		first = append(first,
			Text{X: colLeft, Y: 740, S: "TOTAL CREDIT LIMIT"},
			Text{X: colMiddle, Y: 740, S: "AVAILABLE CREDIT LIMIT"},
			Text{X: colRight, Y: 740, S: "AVAILABLE CASH LIMIT"},
			Text{X: colLeft, Y: 728, S: "(Including Cash)"},
			Text{X: colLeft, Y: 716, S: s.TotalLimit},
			Text{X: colMiddle, Y: 716, S: s.AvailableLimit},
			Text{X: colRight, Y: 716, S: "C60,000.00"},
		)
	}
	first = append(first, Text{X: colLeft, Y: 690, S: "Domestic Transactions"})

	if s.OmitTable {
		first = append(first, Text{X: colLeft, Y: 670, S: "No transactions this billing cycle."})
		return Document{Pages: [][]Text{first}, UserPassword: password}
	}

	pages := [][]Text{}
	page := first
	y := 670.0
	header := func() {
		page = append(page,
			Text{X: colLeft, Y: y, S: "Date"},
			Text{X: colMerchant, Y: y, S: "Transaction Description"},
			Text{X: colAmount, Y: y, S: "Amount (in Rs.)"},
		)
		y -= 16
	}
	header()

	for i, r := range s.Rows {
		if i > 0 && i%perPage == 0 {
			pages = append(pages, page)
			page = nil
			y = 800
			header()
		}
		page = append(page,
			Text{X: colLeft, Y: y, S: r.Date},
			Text{X: colMerchant, Y: y, S: r.Merchant},
		)
		if r.Extra != "" {
			page = append(page, Text{X: colExtra, Y: y, S: r.Extra})
		}
		page = append(page, Text{X: colAmount, Y: y, S: r.Amount})
		if r.Suffix != "" {
			page = append(page, Text{X: colSuffix, Y: y, S: r.Suffix})
		}
		y -= 14
	}
	page = append(page, Text{X: colLeft, Y: y - 10, S: "Page end. Minimum Amount Due as per the payment summary."})
	pages = append(pages, page)

	return Document{Pages: pages, UserPassword: password}
}

// Bytes renders the statement encrypted with password.
func (s Statement) Bytes(password string) []byte {
	return s.Document(password).Bytes()
}
