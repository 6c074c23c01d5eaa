package checkout

import (
	"context"
	"fmt"
	"regexp"

	"github.com/avilesdev/storefront-backend/internal/bag"
	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Step is one of the three linear wizard stages.
type Step string

const (
	StepCustomer Step = "customer"
	StepShipping Step = "shipping"
	StepReview   Step = "review"
)

// State is a session's wizard position plus the form data entered so far.
// Back navigation never resets previously entered values.
type State struct {
	Step Step     `json:"step"`
	Form FormData `json:"form"`
}

// StateStore persists wizard state per session.
type StateStore interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state *State) error
	Drop(ctx context.Context, sessionID string) error
}

type bagReader interface {
	Summary(ctx context.Context, sessionID string) (bag.Summary, error)
}

// AdvanceInput carries the current step's fields. Exactly the field matching
// the session's step must be set; the other must be nil.
type AdvanceInput struct {
	Customer *CustomerFields `json:"customer,omitempty"`
	Shipping *ShippingFields `json:"shipping,omitempty"`
}

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Wizard drives the customer → shipping → review state machine. Forward
// transitions are gated by per-step validation; back transitions are always
// permitted.
type Wizard struct {
	states   StateStore
	bags     bagReader
	validate *validator.Validate
}

// NewWizard builds the checkout wizard.
func NewWizard(states StateStore, bags bagReader) (*Wizard, error) {
	if states == nil {
		return nil, fmt.Errorf("state store required")
	}
	if bags == nil {
		return nil, fmt.Errorf("bag reader required")
	}
	return &Wizard{
		states:   states,
		bags:     bags,
		validate: validator.New(),
	}, nil
}

// State returns the session's wizard state, starting a fresh one at the
// customer step when none exists.
func (w *Wizard) State(ctx context.Context, sessionID string) (*State, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	state, err := w.states.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &State{Step: StepCustomer}
	}
	return state, nil
}

// Advance validates the current step's fields and moves the session one step
// forward. Validation failure leaves both the step and the form untouched.
func (w *Wizard) Advance(ctx context.Context, sessionID string, input AdvanceInput) (*State, error) {
	state, err := w.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch state.Step {
	case StepCustomer:
		if input.Customer == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer fields are required for this step")
		}
		if err := w.validateCustomer(input.Customer); err != nil {
			return nil, err
		}
		applyCustomer(&state.Form, input.Customer)
		state.Step = StepShipping

	case StepShipping:
		if input.Shipping == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping fields are required for this step")
		}
		if err := w.validateStruct(input.Shipping); err != nil {
			return nil, err
		}
		summary, err := w.bags.Summary(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if len(summary.Items) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "your bag is empty")
		}
		applyShipping(&state.Form, input.Shipping)
		state.Step = StepReview

	case StepReview:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review is the final step")

	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "unknown wizard step")
	}

	if err := w.states.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Back moves one step toward customer, preserving all entered fields. Going
// back from the first step is a no-op.
func (w *Wizard) Back(ctx context.Context, sessionID string) (*State, error) {
	state, err := w.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch state.Step {
	case StepShipping:
		state.Step = StepCustomer
	case StepReview:
		state.Step = StepShipping
	default:
		return state, nil
	}

	if err := w.states.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Close discards the session's wizard state after a finished checkout.
func (w *Wizard) Close(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return w.states.Drop(ctx, sessionID)
}

func (w *Wizard) validateCustomer(fields *CustomerFields) error {
	if err := w.validateStruct(fields); err != nil {
		return err
	}
	if !phonePattern.MatchString(fields.Phone) {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone must be exactly 10 digits").
			WithDetails(map[string]string{"phone": "must be exactly 10 digits"})
	}
	return nil
}

func (w *Wizard) validateStruct(value any) error {
	err := w.validate.Struct(value)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	}
	return "is invalid"
}

func applyCustomer(form *FormData, fields *CustomerFields) {
	form.CustomerName = fields.CustomerName
	form.Email = fields.Email
	form.Phone = fields.Phone
	form.CompanyName = fields.CompanyName
	form.TaxID = fields.TaxID
	form.CompanyType = fields.CompanyType
}

func applyShipping(form *FormData, fields *ShippingFields) {
	form.Address = fields.Address
	form.City = fields.City
	form.State = fields.State
	form.PostalCode = fields.PostalCode
	form.Notes = fields.Notes
}
