package vault

import (
	"github.com/vvka-141/dvload/internal/hashkey"
	"github.com/vvka-141/dvload/pkg/dvload"
)

// Keys holds the four business keys derived from one source row.
type Keys struct {
	Customer hashkey.Key
	Product  hashkey.Key
	Location hashkey.Key
	Order    hashkey.Key
}

// Of returns the key of kind k.
func (k Keys) Of(kind Kind) hashkey.Key {
	switch kind {
	case KindCustomer:
		return k.Customer
	case KindProduct:
		return k.Product
	case KindLocation:
		return k.Location
	default:
		return k.Order
	}
}

// keyInputs are the attribute values each key of a row is derived from.
type keyInputs struct {
	segment, city, state, postalCode any
	category, subCategory            any
	order                            []any
}

func typedInputs(r *dvload.Row) keyInputs {
	return keyInputs{
		segment:     r.Segment,
		city:        r.City,
		state:       r.State,
		postalCode:  r.PostalCode,
		category:    r.Category,
		subCategory: r.SubCategory,
		order:       r.Values,
	}
}

func deriveKeys(d hashkey.Deriver, in keyInputs) Keys {
	return Keys{
		Customer: d.Derive(in.segment, in.city, in.state, in.postalCode),
		Product:  d.Derive(in.category, in.subCategory),
		Location: d.Derive(in.city, in.state, in.postalCode),
		Order:    d.Derive(in.order...),
	}
}

// DeriveKeys computes the business keys of r from its typed values.
//
// The order key covers every source column in header order, so two rows that
// differ in any value are distinct orders.
func DeriveKeys(d hashkey.Deriver, r *dvload.Row) Keys {
	return deriveKeys(d, typedInputs(r))
}
