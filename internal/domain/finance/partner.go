package finance

import "strings"

// Client is a counterpart of receivables
type Client struct {
	ID           string `mapstructure:"id" json:"id"`
	Nome         string `mapstructure:"nome" json:"nome"`
	Email        string `mapstructure:"email" json:"email,omitempty"`
	Telefone     string `mapstructure:"telefone" json:"telefone,omitempty"`
	Documento    string `mapstructure:"documento" json:"documento,omitempty"`
	Endereco     string `mapstructure:"endereco" json:"endereco,omitempty"`
	Cidade       string `mapstructure:"cidade" json:"cidade,omitempty"`
	Estado       string `mapstructure:"estado" json:"estado,omitempty"`
	CEP          string `mapstructure:"cep" json:"cep,omitempty"`
	GrupoCliente string `mapstructure:"grupo_cliente" json:"grupo_cliente,omitempty"`
	Ativo        bool   `mapstructure:"ativo" json:"ativo"`
}

// Cohort returns the trimmed cohort tag, empty when the client has none
func (c *Client) Cohort() string {
	return strings.TrimSpace(c.GrupoCliente)
}

// Supplier is a counterpart of payables
type Supplier struct {
	ID        string `mapstructure:"id" json:"id"`
	Nome      string `mapstructure:"nome" json:"nome"`
	Email     string `mapstructure:"email" json:"email,omitempty"`
	Telefone  string `mapstructure:"telefone" json:"telefone,omitempty"`
	Documento string `mapstructure:"documento" json:"documento,omitempty"`
	Endereco  string `mapstructure:"endereco" json:"endereco,omitempty"`
	Cidade    string `mapstructure:"cidade" json:"cidade,omitempty"`
	Estado    string `mapstructure:"estado" json:"estado,omitempty"`
	CEP       string `mapstructure:"cep" json:"cep,omitempty"`
	Ativo     bool   `mapstructure:"ativo" json:"ativo"`
}

// Category groups movements, receivables and payables
type Category struct {
	ID   string   `mapstructure:"id" json:"id"`
	Nome string   `mapstructure:"nome" json:"nome"`
	Tipo FlowType `mapstructure:"tipo" json:"tipo"`
	Cor  string   `mapstructure:"cor" json:"cor,omitempty"`
}

// PaymentMethod is a means of payment (forma de pagamento)
type PaymentMethod struct {
	ID    string `mapstructure:"id" json:"id"`
	Nome  string `mapstructure:"nome" json:"nome"`
	Ativo bool   `mapstructure:"ativo" json:"ativo"`
}
