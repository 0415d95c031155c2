package core

// Closed enumerations accepted by the API.
type (
	ExpenseCategory string
	IncomeCategory  string
	PaymentMethod   string
	Frequency       string
	AccountType     string
	RentStatus      string
)

const (
	ExpenseFood          ExpenseCategory = "food"
	ExpenseTransport     ExpenseCategory = "transport"
	ExpenseUtilities     ExpenseCategory = "utilities"
	ExpenseEntertainment ExpenseCategory = "entertainment"
	ExpenseHealthcare    ExpenseCategory = "healthcare"
	ExpenseEducation     ExpenseCategory = "education"
	ExpenseOther         ExpenseCategory = "other"
)

const (
	IncomeSalary     IncomeCategory = "salary"
	IncomeFreelance  IncomeCategory = "freelance"
	IncomeBusiness   IncomeCategory = "business"
	IncomeInvestment IncomeCategory = "investment"
	IncomeOther      IncomeCategory = "other"
)

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCard          PaymentMethod = "card"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
	PaymentMobileBanking PaymentMethod = "mobile_banking"
)

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const (
	AccountSavings  AccountType = "savings"
	AccountChecking AccountType = "checking"
	AccountBusiness AccountType = "business"
)

const (
	RentPending RentStatus = "pending"
	RentPaid    RentStatus = "paid"
	RentOverdue RentStatus = "overdue"
)

func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseFood, ExpenseTransport, ExpenseUtilities, ExpenseEntertainment,
		ExpenseHealthcare, ExpenseEducation, ExpenseOther:
		return true
	}
	return false
}

func (c IncomeCategory) IsValid() bool {
	switch c {
	case IncomeSalary, IncomeFreelance, IncomeBusiness, IncomeInvestment, IncomeOther:
		return true
	}
	return false
}

// IsValid accepts the empty method, which means "not recorded".
func (p PaymentMethod) IsValid() bool {
	switch p {
	case "", PaymentCash, PaymentCard, PaymentBankTransfer, PaymentMobileBanking:
		return true
	}
	return false
}

// IsValid accepts the empty frequency for non-recurring records.
func (f Frequency) IsValid() bool {
	switch f {
	case "", Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func (a AccountType) IsValid() bool {
	switch a {
	case AccountSavings, AccountChecking, AccountBusiness:
		return true
	}
	return false
}

func (s RentStatus) IsValid() bool {
	switch s {
	case RentPending, RentPaid, RentOverdue:
		return true
	}
	return false
}
