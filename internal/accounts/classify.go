package accounts

import (
	"strings"

	"github.com/cleared-dev/recon/internal/apperrors"
	"github.com/cleared-dev/recon/internal/model"
)

// keywordRule labels the analytic descendants of every synthetic account in
// Group whose description contains one of Keywords.
type keywordRule struct {
	Label    model.AccountType
	Group    model.Group
	Keywords []string
}

// groupRule labels every analytic account in Group.
type groupRule struct {
	Label model.AccountType
	Group model.Group
}

// Rule order matters: a later rule overwrites an earlier label when
// hierarchies overlap.
var (
	keywordRules = []keywordRule{
		{Label: model.AccountTypeClient, Group: model.GroupAsset, Keywords: []string{"CLIENTE", "CONTAS A RECEBER"}},
		{Label: model.AccountTypeTreasury, Group: model.GroupAsset, Keywords: []string{"CAIXA", "BANCO", "BANCOS", "DISPONIVEL"}},
		{Label: model.AccountTypeSupplier, Group: model.GroupLiability, Keywords: []string{"FORNECEDOR", "FORNECEDORES", "CONTAS A PAGAR"}},
	}
	groupRules = []groupRule{
		{Label: model.AccountTypeRevenue, Group: model.GroupRevenue},
		{Label: model.AccountTypeExpense, Group: model.GroupExpense},
		{Label: model.AccountTypeEquity, Group: model.GroupEquity},
	}
)

// Classify derives the account type of every analytic account reachable by
// the classification rules. Accounts left out resolve to OTHER.
func Classify(chart []model.ChartAccount) (model.ClassificationMap, error) {
	if len(chart) == 0 {
		return nil, &apperrors.SchemaError{Source: sourceChart, Detail: "chart of accounts is empty"}
	}

	m := make(model.ClassificationMap)
	for _, r := range keywordRules {
		for _, parent := range parents(chart, r) {
			markDescendants(m, chart, parent.Code, r.Label)
		}
	}
	for _, r := range groupRules {
		for _, acct := range chart {
			if acct.IsAnalytic && acct.Group == r.Group {
				m[acct.ReducedCode] = r.Label
			}
		}
	}
	return m, nil
}

func parents(chart []model.ChartAccount, r keywordRule) []model.ChartAccount {
	var out []model.ChartAccount
	for _, acct := range chart {
		if acct.IsAnalytic || acct.Group != r.Group || acct.Code == "" {
			continue
		}
		desc := strings.ToUpper(acct.Description)
		for _, kw := range r.Keywords {
			if strings.Contains(desc, kw) {
				out = append(out, acct)
				break
			}
		}
	}
	return out
}

func markDescendants(m model.ClassificationMap, chart []model.ChartAccount, prefix string, label model.AccountType) {
	for _, acct := range chart {
		if acct.IsAnalytic && strings.HasPrefix(acct.Code, prefix) {
			m[acct.ReducedCode] = label
		}
	}
}
