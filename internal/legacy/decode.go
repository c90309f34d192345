package legacy

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/swiftpos/swiftpos/internal/domain/sale"
	"github.com/swiftpos/swiftpos/internal/domain/store"
)

// The legacy API answers with inconsistent field-name casings: some
// deployments send camelCase ("branchCode"), others PascalCase
// ("BranchCode"), and the convention can differ per field within one
// response. The decoders below normalize keys by lowercasing before
// matching, so both shapes collapse into one internal record at the
// boundary and nothing past this package ever sees the ambiguity.

func decodeStoreName(data []byte) (string, error) {
	var name string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch strings.ToLower(key) {
		case "storename":
			s, err := d.Str()
			if err != nil {
				return err
			}
			if name == "" {
				name = s
			}
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return "", errors.Wrap(err, "decode store response")
	}
	return name, nil
}

func decodeBranches(data []byte) ([]store.Branch, error) {
	var branches []store.Branch
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		var b store.Branch
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch strings.ToLower(key) {
			case "id":
				n, err := d.Int64()
				if err != nil {
					return err
				}
				b.ID = n
				return nil
			case "branchcode":
				s, err := d.Str()
				if err != nil {
					return err
				}
				b.BranchCode = s
				return nil
			case "dateinserted":
				s, err := d.Str()
				if err != nil {
					return err
				}
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					b.InsertedAt = t
				}
				return nil
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		branches = append(branches, b)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode branches")
	}
	return branches, nil
}

func decodeCheckoutRecords(data []byte) ([]sale.CheckoutRecord, error) {
	var records []sale.CheckoutRecord
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		var r sale.CheckoutRecord
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch strings.ToLower(key) {
			case "id":
				n, err := d.Int64()
				if err != nil {
					return err
				}
				r.ID = n
				return nil
			case "branchcode":
				return decodeStr(d, &r.BranchCode)
			case "category":
				return decodeStr(d, &r.Category)
			case "itemname":
				return decodeStr(d, &r.ItemName)
			case "priceperitem":
				return decodeDecimal(d, &r.PricePerItem)
			case "quantity":
				n, err := d.Int()
				if err != nil {
					return err
				}
				r.Quantity = n
				return nil
			case "total":
				return decodeDecimal(d, &r.Total)
			case "datecheckout":
				var s string
				if err := decodeStr(d, &s); err != nil {
					return err
				}
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					r.RecordedAt = t
				}
				return nil
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		records = append(records, r)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode checkout records")
	}
	return records, nil
}

func decodeStr(d *jx.Decoder, dst *string) error {
	s, err := d.Str()
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

// decodeDecimal reads a JSON number as an exact decimal.
func decodeDecimal(d *jx.Decoder, dst *decimal.Decimal) error {
	n, err := d.Num()
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return errors.Wrap(err, "parse decimal")
	}
	*dst = v
	return nil
}
