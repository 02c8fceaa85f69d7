package stock

import (
	"github.com/jhoicas/pos-ledger-api/internal/domain/entity"
	calc "github.com/jhoicas/pos-ledger-api/internal/domain/stock"
)

// KardexGenerator define el puerto de generación del reporte kardex (tarjeta
// de existencias) de un producto en PDF.
type KardexGenerator interface {
	GenerateKardexPDF(product *entity.Product, movements []entity.StockMovement, summary calc.Summary) ([]byte, error)
}
