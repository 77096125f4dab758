package accounts

import "github.com/cleared-dev/recon/internal/model"

// SampleChart returns a small chart of accounts in the layout of a
// Brazilian small-business plan. It seeds new workspaces and tests.
func SampleChart() []model.ChartAccount {
	return []model.ChartAccount{
		{Code: "1", ReducedCode: "1", Description: "ATIVO", Group: model.GroupAsset},
		{Code: "11", ReducedCode: "11", Description: "ATIVO CIRCULANTE", Group: model.GroupAsset},
		{Code: "111", ReducedCode: "111", Description: "DISPONIVEL", Group: model.GroupAsset},
		{Code: "11101", ReducedCode: "5", Description: "CAIXA GERAL", Group: model.GroupAsset, IsAnalytic: true},
		{Code: "11102", ReducedCode: "6", Description: "BANCO DO BRASIL C/C", Group: model.GroupAsset, IsAnalytic: true},
		{Code: "112", ReducedCode: "112", Description: "CLIENTES", Group: model.GroupAsset},
		{Code: "11201", ReducedCode: "101", Description: "CLIENTES NACIONAIS", Group: model.GroupAsset, IsAnalytic: true},
		{Code: "2", ReducedCode: "2", Description: "PASSIVO", Group: model.GroupLiability},
		{Code: "211", ReducedCode: "211", Description: "FORNECEDORES", Group: model.GroupLiability},
		{Code: "21101", ReducedCode: "201", Description: "FORNECEDORES NACIONAIS", Group: model.GroupLiability, IsAnalytic: true},
		{Code: "212", ReducedCode: "212", Description: "OBRIGACOES TRIBUTARIAS", Group: model.GroupLiability},
		{Code: "21201", ReducedCode: "202", Description: "ISS A RECOLHER", Group: model.GroupLiability, IsAnalytic: true},
		{Code: "3", ReducedCode: "3", Description: "RECEITAS", Group: model.GroupRevenue},
		{Code: "31101", ReducedCode: "301", Description: "RECEITA DE SERVICOS", Group: model.GroupRevenue, IsAnalytic: true},
		{Code: "4", ReducedCode: "4", Description: "DESPESAS", Group: model.GroupExpense},
		{Code: "41101", ReducedCode: "401", Description: "ALUGUEL", Group: model.GroupExpense, IsAnalytic: true},
		{Code: "41102", ReducedCode: "402", Description: "SOFTWARE", Group: model.GroupExpense, IsAnalytic: true},
		{Code: "5", ReducedCode: "500", Description: "PATRIMONIO LIQUIDO", Group: model.GroupEquity},
		{Code: "51101", ReducedCode: "501", Description: "CAPITAL SOCIAL", Group: model.GroupEquity, IsAnalytic: true},
	}
}
