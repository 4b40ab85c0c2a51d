package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"studiodesk/internal/domain"
	"studiodesk/internal/pkg/validator"
)

// Booking form fields, named as they appear on the wire.
const (
	FieldClientName   = "client_name"
	FieldPhone        = "phone"
	FieldLocation     = "location"
	FieldDeliverables = "deliverables"
	FieldNotes        = "notes"
	FieldShootType    = "shoot_type"
	FieldDate         = "date"
	FieldTime         = "time"
	FieldDuration     = "duration"
	FieldPrice        = "price"
	FieldGST          = "gst"
	FieldAdvance      = "advance"
	FieldStatus       = "status"
	FieldPaymentDone  = "payment_done"
	FieldInvoiceSent  = "invoice_sent"

	CostFieldLabel  = "label"
	CostFieldCost   = "cost"
	CostFieldVendor = "vendor"
)

type FormMode string

const (
	FormCreate FormMode = "create"
	FormEdit   FormMode = "edit"
)

// BookingSaver persists a submitted draft.
type BookingSaver interface {
	Create(ctx context.Context, b domain.Booking) (*domain.Booking, error)
	Update(ctx context.Context, id string, b domain.Booking) (*domain.Booking, error)
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Form edits a single booking draft. Net revenue is recomputed whenever the
// price, GST or cost breakdown changes.
type Form struct {
	mode    FormMode
	id      string
	draft   domain.Booking
	errors  map[string]string
	revenue Revenue
	done    bool
}

func blankDraft() domain.Booking {
	return domain.Booking{
		Status:        domain.BookingPending,
		CostBreakdown: []domain.CostItem{},
	}
}

// NewForm returns a create-mode form with a blank draft.
func NewForm() *Form {
	f := &Form{mode: FormCreate, draft: blankDraft(), errors: map[string]string{}}
	f.recompute()
	return f
}

// EditForm returns an edit-mode form populated from b.
func EditForm(b domain.Booking) *Form {
	f := &Form{mode: FormEdit, id: b.ID, errors: map[string]string{}}
	b.CostBreakdown = append([]domain.CostItem{}, b.CostBreakdown...)
	f.draft = b
	f.recompute()
	return f
}

func (f *Form) Mode() FormMode { return f.mode }

func (f *Form) Draft() domain.Booking { return f.draft }

// Revenue is the live net revenue of the draft.
func (f *Form) Revenue() Revenue { return f.revenue }

// Done reports whether an edit-mode form has been submitted.
func (f *Form) Done() bool { return f.done }

func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// UpdateField merges value into the draft and clears the field's error.
// Numeric fields accept numbers or numeric strings; an empty string clears
// price and GST.
// A rejected value leaves the draft and its revenue untouched.
func (f *Form) UpdateField(field string, value any) error {
	next := f.draft
	d := &next
	var err error

	switch field {
	case FieldClientName:
		d.ClientName, err = asString(field, value)
	case FieldPhone:
		d.Phone, err = asString(field, value)
	case FieldLocation:
		d.Location, err = asString(field, value)
	case FieldDeliverables:
		d.Deliverables, err = asString(field, value)
	case FieldNotes:
		d.Notes, err = asString(field, value)
	case FieldDate:
		d.Date, err = asString(field, value)
	case FieldTime:
		d.Time, err = asString(field, value)
	case FieldShootType:
		var s string
		s, err = asString(field, value)
		d.ShootType = domain.ShootType(s)
	case FieldStatus:
		var s string
		s, err = asString(field, value)
		d.Status = domain.BookingStatus(s)
	case FieldDuration:
		var n *float64
		n, err = asNumber(field, value)
		d.Duration = 0
		if err == nil && n != nil {
			if *n != math.Trunc(*n) {
				err = fmt.Errorf("%w: %s expects whole minutes", ErrFieldType, field)
				break
			}
			d.Duration = int(*n)
		}
	case FieldPrice:
		d.Price, err = asNumber(field, value)
	case FieldGST:
		d.GST, err = asNumber(field, value)
	case FieldAdvance:
		var n *float64
		n, err = asNumber(field, value)
		d.Advance = 0
		if n != nil {
			d.Advance = *n
		}
	case FieldPaymentDone:
		d.PaymentDone, err = asBool(field, value)
	case FieldInvoiceSent:
		d.InvoiceSent, err = asBool(field, value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if err != nil {
		return err
	}

	f.draft = next
	delete(f.errors, field)
	if field == FieldPrice || field == FieldGST {
		f.recompute()
	}
	return nil
}

func (f *Form) AddCostItem() {
	f.draft.CostBreakdown = append(f.draft.CostBreakdown, domain.CostItem{})
	f.recompute()
}

func (f *Form) RemoveCostItem(index int) error {
	if index < 0 || index >= len(f.draft.CostBreakdown) {
		return fmt.Errorf("%w: %d", ErrCostIndex, index)
	}
	items := make([]domain.CostItem, 0, len(f.draft.CostBreakdown)-1)
	items = append(items, f.draft.CostBreakdown[:index]...)
	items = append(items, f.draft.CostBreakdown[index+1:]...)
	f.draft.CostBreakdown = items
	f.recompute()
	return nil
}

func (f *Form) UpdateCostItem(index int, field string, value any) error {
	if index < 0 || index >= len(f.draft.CostBreakdown) {
		return fmt.Errorf("%w: %d", ErrCostIndex, index)
	}
	item := &f.draft.CostBreakdown[index]

	switch field {
	case CostFieldLabel:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		item.Label = s
	case CostFieldVendor:
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		item.Vendor = s
	case CostFieldCost:
		n, err := asNumber(field, value)
		if err != nil {
			return err
		}
		item.Cost = 0
		if n != nil {
			item.Cost = *n
		}
	default:
		return fmt.Errorf("%w: cost item %q", ErrUnknownField, field)
	}

	delete(f.errors, costPath(index, field))
	f.recompute()
	return nil
}

// draftInput is the validated shape of a draft. Text fields are trimmed
// before validation so whitespace-only values count as missing.
type draftInput struct {
	ClientName   string          `json:"client_name" validate:"required"`
	Phone        string          `json:"phone" validate:"required,phone"`
	Duration     int             `json:"duration" validate:"required,gt=0"`
	ShootType    string          `json:"shoot_type" validate:"required,shoot_type"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string          `json:"time" validate:"required,datetime=15:04"`
	Status       string          `json:"status" validate:"required,booking_status"`
	Deliverables string          `json:"deliverables" validate:"required"`
	Location     string          `json:"location" validate:"required"`
	Price        *float64        `json:"price" validate:"omitempty,gte=0"`
	GST          *float64        `json:"gst" validate:"omitempty,gte=0,lte=100"`
	Advance      float64         `json:"advance" validate:"gte=0"`
	Costs        []costItemInput `json:"cost_breakdown" validate:"dive"`
}

type costItemInput struct {
	Cost float64 `json:"cost" validate:"gte=0"`
}

var requiredMessages = map[string]string{
	FieldClientName:   "Client name is required",
	FieldPhone:        "Phone number is required",
	FieldDuration:     "Duration is required",
	FieldShootType:    "Shoot type is required",
	FieldDate:         "Date is required",
	FieldTime:         "Time is required",
	FieldStatus:       "Status is required",
	FieldDeliverables: "Deliverables are required",
	FieldLocation:     "Location is required",
}

var ruleMessages = map[string]string{
	FieldPhone:     "Enter a valid phone number",
	FieldDuration:  "Duration must be greater than zero",
	FieldShootType: "Unknown shoot type",
	FieldDate:      "Date must be in YYYY-MM-DD format",
	FieldTime:      "Time must be in HH:MM format",
	FieldStatus:    "Unknown booking status",
	FieldPrice:     "Price cannot be negative",
	FieldGST:       "GST must be between 0 and 100",
	FieldAdvance:   "Advance cannot be negative",
}

// Validate checks required fields, formats and the advance <= price rule.
// The result replaces the form's current errors.
func (f *Form) Validate() ValidationResult {
	d := f.draft
	in := draftInput{
		ClientName:   strings.TrimSpace(d.ClientName),
		Phone:        strings.TrimSpace(d.Phone),
		Duration:     d.Duration,
		ShootType:    string(d.ShootType),
		Date:         strings.TrimSpace(d.Date),
		Time:         strings.TrimSpace(d.Time),
		Status:       string(d.Status),
		Deliverables: strings.TrimSpace(d.Deliverables),
		Location:     strings.TrimSpace(d.Location),
		Price:        d.Price,
		GST:          d.GST,
		Advance:      d.Advance,
		Costs:        make([]costItemInput, 0, len(d.CostBreakdown)),
	}
	for _, c := range d.CostBreakdown {
		in.Costs = append(in.Costs, costItemInput{Cost: c.Cost})
	}

	errs := make(map[string]string)
	for field, tag := range validator.Validate(in) {
		errs[field] = messageFor(field, tag)
	}

	price := 0.0
	if d.Price != nil {
		price = *d.Price
	}
	if _, ok := errs[FieldAdvance]; !ok && d.Advance > price {
		errs[FieldAdvance] = "Advance cannot be greater than total price"
	}

	f.errors = errs
	return ValidationResult{Valid: len(errs) == 0, Errors: f.Errors()}
}

// Submit validates the draft and hands it to saver. A create-mode form is
// reset to a blank draft on success; an edit-mode form is marked done. On any
// failure the draft is kept so the operator can retry.
func (f *Form) Submit(ctx context.Context, saver BookingSaver) (*domain.Booking, error) {
	if res := f.Validate(); !res.Valid {
		return nil, ErrInvalidDraft
	}

	draft := f.draft
	draft.CostBreakdown = append([]domain.CostItem{}, f.draft.CostBreakdown...)

	var (
		saved *domain.Booking
		err   error
	)
	if f.mode == FormEdit {
		saved, err = saver.Update(ctx, f.id, draft)
	} else {
		saved, err = saver.Create(ctx, draft)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if f.mode == FormEdit {
		f.done = true
	} else {
		f.draft = blankDraft()
		f.errors = map[string]string{}
		f.recompute()
	}
	return saved, nil
}

func (f *Form) recompute() {
	f.revenue = BookingRevenue(f.draft)
}

func messageFor(field, tag string) string {
	if strings.HasPrefix(field, "cost_breakdown[") {
		return "Cost cannot be negative"
	}
	if tag == "required" {
		if msg, ok := requiredMessages[field]; ok {
			return msg
		}
	}
	if msg, ok := ruleMessages[field]; ok {
		return msg
	}
	return "Invalid value"
}

func costPath(index int, field string) string {
	return fmt.Sprintf("cost_breakdown[%d].%s", index, field)
}

func asString(field string, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %s expects text", ErrFieldType, field)
	}
}

func asNumber(field string, value any) (*float64, error) {
	var n float64
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects a number", ErrFieldType, field)
		}
		n = f
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(v), "%")
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects a number", ErrFieldType, field)
		}
		n = f
	default:
		return nil, fmt.Errorf("%w: %s expects a number", ErrFieldType, field)
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return nil, fmt.Errorf("%w: %s must be a finite number", ErrFieldType, field)
	}
	return &n, nil
}

func asBool(field string, value any) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: %s expects true or false", ErrFieldType, field)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: %s expects true or false", ErrFieldType, field)
	}
}
