package models

// ClientModel is the persistence model for clients
type ClientModel struct {
	BaseModel
	Nome         string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(200)"`
	Telefone     string `gorm:"type:varchar(50)"`
	Documento    string `gorm:"type:varchar(30)"`
	Endereco     string `gorm:"type:text"`
	Cidade       string `gorm:"type:varchar(100)"`
	Estado       string `gorm:"type:varchar(2)"`
	CEP          string `gorm:"column:cep;type:varchar(10)"`
	GrupoCliente string `gorm:"type:varchar(100);index"`
	Ativo        bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clientes"
}

// SupplierModel is the persistence model for suppliers
type SupplierModel struct {
	BaseModel
	Nome      string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Email     string `gorm:"type:varchar(200)"`
	Telefone  string `gorm:"type:varchar(50)"`
	Documento string `gorm:"type:varchar(30)"`
	Endereco  string `gorm:"type:text"`
	Cidade    string `gorm:"type:varchar(100)"`
	Estado    string `gorm:"type:varchar(2)"`
	CEP       string `gorm:"column:cep;type:varchar(10)"`
	Ativo     bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "fornecedores"
}

// CategoryModel is the persistence model for income and expense categories
type CategoryModel struct {
	BaseModel
	Nome string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Tipo string `gorm:"type:varchar(10);not null;index"`
	Cor  string `gorm:"type:varchar(7)"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categorias"
}

// PaymentMethodModel is the persistence model for payment methods
type PaymentMethodModel struct {
	BaseModel
	Nome  string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Ativo bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "formas_pagamento"
}
