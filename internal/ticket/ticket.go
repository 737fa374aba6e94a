// Package ticket renders the fixed-width receipts sent to the thermal printer.
package ticket

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KilOS-pos/pos-carniceria/internal/model"

	"github.com/shopspring/decimal"
)

// Ancho is the printable width of an 80mm roll in characters.
const Ancho = 42

// Encabezado is the part shared by every receipt of an Empresa.
type Encabezado struct {
	Empresa string
	Eslogan string
	Loc     *time.Location
}

func (e Encabezado) loc() *time.Location {
	if e.Loc == nil {
		return time.UTC
	}
	return e.Loc
}

// Venta renders a sale receipt. p must carry its Items; p.Cliente is optional.
func Venta(e Encabezado, p *model.Pedido) string {
	var b strings.Builder
	b.WriteString(centrar(e.Empresa))
	if e.Eslogan != "" {
		b.WriteString(centrar(e.Eslogan))
	}
	b.WriteString(linea('='))
	fmt.Fprintf(&b, "TICKET: #%06d\n", p.NumeroTicket)
	fmt.Fprintf(&b, "FECHA: %s\n", p.CreatedAt.In(e.loc()).Format("02/01/2006 15:04:05"))
	fmt.Fprintf(&b, "TIPO: %s\n", strings.ToUpper(p.TipoVenta))

	cliente := "Mostrador"
	if p.Cliente != nil {
		cliente = p.Cliente.Nombre
	}
	fmt.Fprintf(&b, "CLIENTE: %s\n", cliente)
	if p.TipoVenta == model.TipoDomicilio && p.Cliente != nil {
		if p.Cliente.Telefono != "" {
			fmt.Fprintf(&b, "TEL: %s\n", p.Cliente.Telefono)
		}
		if p.Cliente.Direccion != nil && *p.Cliente.Direccion != "" {
			fmt.Fprintf(&b, "DIRECCIÓN: %s\n", *p.Cliente.Direccion)
		}
	}

	b.WriteString(linea('-'))
	b.WriteString("CANT  DESCRIPCION       TOTAL\n")
	b.WriteString(linea('-'))
	for _, it := range p.Items {
		nombre := it.Nombre
		if it.Mayoreo {
			if utf8.RuneCountInString(nombre) > 14 {
				nombre = truncar(nombre, 11)
			}
			nombre += " (M)"
		} else {
			nombre = truncar(nombre, 15)
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			izq(cantidad(it.Cantidad, it.UnidadMedida), 5),
			izq(nombre, 18),
			der(pesos(it.Subtotal), 15))
	}
	b.WriteString(linea('-'))
	b.WriteString(renglon("TOTAL:", pesos(p.Total)))
	b.WriteString(renglon("PAGO:", strings.ToUpper(p.MetodoPago)))
	if p.MetodoPago == model.MetodoEfectivo && p.MontoRecibido != nil {
		b.WriteString(renglon("RECIBIDO:", pesos(*p.MontoRecibido)))
		cambio := decimal.Zero
		if p.CambioEntregado != nil {
			cambio = *p.CambioEntregado
		}
		b.WriteString(renglon("CAMBIO:", pesos(cambio)))
	}
	b.WriteString(linea('='))
	b.WriteString(centrar("¡GRACIAS POR SU PREFERENCIA!"))
	b.WriteString(strings.Repeat("\n", 5))
	return b.String()
}

// Retiro renders a withdrawal voucher with a signature line.
func Retiro(e Encabezado, r *model.Retiro) string {
	var b strings.Builder
	b.WriteString(centrar(e.Empresa))
	b.WriteString(centrar("COMPROBANTE DE RETIRO"))
	b.WriteString(linea('='))
	fmt.Fprintf(&b, "RETIRO: #%06d\n", r.ID)
	fmt.Fprintf(&b, "FECHA: %s\n", r.CreatedAt.In(e.loc()).Format("02/01/2006 15:04:05"))
	b.WriteString(linea('-'))
	fmt.Fprintf(&b, "CONCEPTO: %s\n", r.Concepto)
	b.WriteString(linea('-'))
	b.WriteString(renglon("MONTO RETIRADO:", pesos(r.Monto)))
	b.WriteString(linea('='))
	b.WriteString(centrar("FIRMA: __________________"))
	b.WriteString(linea('='))
	b.WriteString(strings.Repeat("\n", 4))
	return b.String()
}

// Cierre is what the till-close receipt needs; a preview passes a zero
// MontoContado and Diferencia.
type Cierre struct {
	Fecha            time.Time
	CerradoPor       string
	VentasEfectivo   decimal.Decimal
	VentasTarjeta    decimal.Decimal
	Retiros          decimal.Decimal
	EfectivoEsperado decimal.Decimal
	MontoContado     decimal.Decimal
	Diferencia       decimal.Decimal
}

// Arqueo renders the till-close receipt.
func Arqueo(e Encabezado, c Cierre) string {
	cerradoPor := c.CerradoPor
	if cerradoPor == "" {
		cerradoPor = "No especificado"
	}

	var b strings.Builder
	b.WriteString(centrar(e.Empresa))
	b.WriteString(centrar("COMPROBANTE DE CIERRE DE CAJA"))
	b.WriteString(linea('='))
	fmt.Fprintf(&b, "FECHA: %s\n", c.Fecha.Format("02/01/2006"))
	fmt.Fprintf(&b, "CERRADO POR: %s\n", cerradoPor)
	b.WriteString(linea('-'))
	b.WriteString(renglon("VENTAS EN EFECTIVO:", pesos(c.VentasEfectivo)))
	b.WriteString(renglon("VENTAS CON TARJETA:", pesos(c.VentasTarjeta)))
	b.WriteString(renglon("TOTAL DE VENTAS:", pesos(c.VentasEfectivo.Add(c.VentasTarjeta))))
	b.WriteString(linea('-'))
	b.WriteString(renglon("TOTAL DE RETIROS:", "-"+pesos(c.Retiros)))
	b.WriteString(linea('='))
	b.WriteString(renglon("EFECTIVO ESPERADO:", pesos(c.EfectivoEsperado)))
	b.WriteString(renglon("MONTO CONTADO:", pesos(c.MontoContado)))
	b.WriteString(linea('-'))
	b.WriteString(renglon("DIFERENCIA:", conSigno(c.Diferencia)))
	b.WriteString(linea('='))
	b.WriteString(centrar("FIRMA: __________________"))
	b.WriteString(strings.Repeat("\n", 5))
	return b.String()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func pesos(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

// conSigno always prints the sign: +$0.00, +$12.50, -$3.00.
func conSigno(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + pesos(d.Abs())
	}
	return "+" + pesos(d)
}

func cantidad(q decimal.Decimal, unidad string) string {
	if unidad == model.UnidadPieza {
		return q.String() + "pz"
	}
	return q.StringFixed(3) + "kg"
}

func linea(c byte) string { return strings.Repeat(string(c), Ancho) + "\n" }

// renglon right-aligns the label to column 32, then the value.
func renglon(etiqueta, valor string) string {
	return der(etiqueta, 32) + " " + valor + "\n"
}

func centrar(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= Ancho {
		return s + "\n"
	}
	return strings.Repeat(" ", (Ancho-n)/2) + s + "\n"
}

func izq(s string, w int) string {
	if n := utf8.RuneCountInString(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func der(s string, w int) string {
	if n := utf8.RuneCountInString(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}

func truncar(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
