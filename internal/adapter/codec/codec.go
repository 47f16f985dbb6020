// Package codec converts AppState to and from its persisted JSON document.
// Balances and amounts are bare JSON numbers, birthdays ISO dates and
// timestamps RFC 3339 instants. Decode never returns a partially valid
// state: any schema violation is a *domain.StructuralIntegrityError.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/savespendshare-backend/internal/domain"
)

// Amount is a decimal that serializes as an unquoted JSON number and
// refuses quoted input.
type Amount decimal.Decimal

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return errors.New("amount must be a number, got a string")
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("amount is not numeric: %w", err)
	}
	*a = Amount(d)
	return nil
}

type stateDoc struct {
	Kids         *[]childDoc       `json:"kids"`
	Settings     *settingsDoc      `json:"settings"`
	Transactions *[]transactionDoc `json:"transactions"`
}

type childDoc struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Birthday string       `json:"birthday"`
	Age      *int         `json:"age,omitempty"`
	Balances *balancesDoc `json:"balances"`
	Goal     *goalDoc     `json:"goal,omitempty"`
}

type balancesDoc struct {
	Save  *Amount `json:"save"`
	Spend *Amount `json:"spend"`
	Share *Amount `json:"share"`
}

type goalDoc struct {
	Name       string  `json:"name"`
	Target     *Amount `json:"target"`
	Celebrated bool    `json:"celebrated,omitempty"`
}

type settingsDoc struct {
	AllowanceDay      string     `json:"allowanceDay"`
	LastAllowanceDate *time.Time `json:"lastAllowanceDate"`
	RotationWeek      *int       `json:"rotationWeek"`
}

type transactionDoc struct {
	ID          string     `json:"id"`
	Date        *time.Time `json:"date"`
	KidID       string     `json:"kidId"`
	KidName     string     `json:"kidName"`
	Bucket      string     `json:"bucket"`
	Amount      *Amount    `json:"amount"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	BatchID     string     `json:"batchId,omitempty"`
}

// Encode renders the state as an indented, human readable document.
func Encode(state *domain.AppState) ([]byte, error) {
	kids := make([]childDoc, 0, len(state.Kids))
	for _, c := range state.Kids {
		doc := childDoc{
			ID:       c.ID.String(),
			Name:     c.Name,
			Birthday: c.Birthday.String(),
			Balances: &balancesDoc{
				Save:  amountPtr(c.Balances.Save),
				Spend: amountPtr(c.Balances.Spend),
				Share: amountPtr(c.Balances.Share),
			},
		}
		if c.CachedAge != domain.AgeUnknown {
			age := c.CachedAge
			doc.Age = &age
		}
		if c.Goal != nil {
			doc.Goal = &goalDoc{Name: c.Goal.Name, Target: amountPtr(c.Goal.Target), Celebrated: c.Goal.Celebrated}
		}
		kids = append(kids, doc)
	}

	txs := make([]transactionDoc, 0, len(state.Transactions))
	for _, t := range state.Transactions {
		ts := t.Timestamp
		doc := transactionDoc{
			ID:          t.ID.String(),
			Date:        &ts,
			KidName:     t.ChildName,
			Bucket:      string(t.Bucket),
			Amount:      amountPtr(t.Amount),
			Description: t.Description,
			Type:        string(t.Kind),
		}
		if !t.IsSystem() {
			doc.KidID = t.ChildID.String()
		}
		if t.BatchID != uuid.Nil {
			doc.BatchID = t.BatchID.String()
		}
		txs = append(txs, doc)
	}

	rotation := int(state.Settings.RotationWeek)
	doc := stateDoc{
		Kids: &kids,
		Settings: &settingsDoc{
			AllowanceDay:      strings.ToLower(state.Settings.AllowanceDay.String()),
			LastAllowanceDate: state.Settings.LastAllowanceAt,
			RotationWeek:      &rotation,
		},
		Transactions: &txs,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}

// Decode parses and validates a persisted document.
func Decode(data []byte) (*domain.AppState, error) {
	var doc stateDoc
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, structuralError(err)
	}

	if doc.Kids == nil {
		return nil, missing("kids")
	}
	if doc.Settings == nil {
		return nil, missing("settings")
	}
	if doc.Transactions == nil {
		return nil, missing("transactions")
	}

	state := &domain.AppState{
		Kids:         make([]domain.Child, 0, len(*doc.Kids)),
		Transactions: make([]domain.Transaction, 0, len(*doc.Transactions)),
	}

	for i, kd := range *doc.Kids {
		child, err := decodeChild(fmt.Sprintf("kids[%d]", i), kd)
		if err != nil {
			return nil, err
		}
		state.Kids = append(state.Kids, child)
	}

	settings, err := decodeSettings(*doc.Settings)
	if err != nil {
		return nil, err
	}
	state.Settings = settings

	for i, td := range *doc.Transactions {
		tx, err := decodeTransaction(fmt.Sprintf("transactions[%d]", i), td)
		if err != nil {
			return nil, err
		}
		state.Transactions = append(state.Transactions, tx)
	}

	if err := state.Validate(); err != nil {
		return nil, &domain.StructuralIntegrityError{Reason: err.Error()}
	}
	return state, nil
}

func decodeChild(path string, d childDoc) (domain.Child, error) {
	var c domain.Child
	if d.ID == "" {
		return c, missing(path + ".id")
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return c, invalid(path+".id", err)
	}
	if d.Name == "" {
		return c, missing(path + ".name")
	}
	if d.Birthday == "" {
		return c, missing(path + ".birthday")
	}
	birthday, err := domain.ParseDate(d.Birthday)
	if err != nil {
		return c, invalid(path+".birthday", err)
	}
	if d.Balances == nil {
		return c, missing(path + ".balances")
	}
	if d.Balances.Save == nil {
		return c, missing(path + ".balances.save")
	}
	if d.Balances.Spend == nil {
		return c, missing(path + ".balances.spend")
	}
	if d.Balances.Share == nil {
		return c, missing(path + ".balances.share")
	}

	c = domain.Child{
		ID:       id,
		Name:     d.Name,
		Birthday: birthday,
		Balances: domain.Balances{
			Save:  decimal.Decimal(*d.Balances.Save),
			Spend: decimal.Decimal(*d.Balances.Spend),
			Share: decimal.Decimal(*d.Balances.Share),
		},
		CachedAge: domain.AgeUnknown,
	}
	if d.Age != nil {
		c.CachedAge = *d.Age
	}
	if d.Goal != nil {
		if d.Goal.Target == nil {
			return c, missing(path + ".goal.target")
		}
		c.Goal = &domain.Goal{Name: d.Goal.Name, Target: decimal.Decimal(*d.Goal.Target), Celebrated: d.Goal.Celebrated}
	}
	return c, nil
}

func decodeSettings(d settingsDoc) (domain.Settings, error) {
	s := domain.DefaultSettings()
	if d.RotationWeek == nil {
		return s, missing("settings.rotationWeek")
	}
	s.RotationWeek = domain.RotationWeek(*d.RotationWeek)
	if d.AllowanceDay != "" {
		day, err := domain.ParseWeekday(d.AllowanceDay)
		if err != nil {
			return s, invalid("settings.allowanceDay", err)
		}
		s.AllowanceDay = day
	}
	s.LastAllowanceAt = d.LastAllowanceDate
	return s, nil
}

func decodeTransaction(path string, d transactionDoc) (domain.Transaction, error) {
	var t domain.Transaction
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return t, invalid(path+".id", err)
	}
	if d.Date == nil {
		return t, missing(path + ".date")
	}
	if d.Amount == nil {
		return t, missing(path + ".amount")
	}
	childID := uuid.Nil
	if d.KidID != "" {
		if childID, err = uuid.Parse(d.KidID); err != nil {
			return t, invalid(path+".kidId", err)
		}
	}
	batchID := uuid.Nil
	if d.BatchID != "" {
		if batchID, err = uuid.Parse(d.BatchID); err != nil {
			return t, invalid(path+".batchId", err)
		}
	}
	return domain.Transaction{
		ID:          id,
		Timestamp:   *d.Date,
		ChildID:     childID,
		ChildName:   d.KidName,
		Bucket:      domain.Bucket(d.Bucket),
		Amount:      decimal.Decimal(*d.Amount),
		Description: d.Description,
		Kind:        domain.TransactionKind(d.Type),
		BatchID:     batchID,
	}, nil
}

func amountPtr(d decimal.Decimal) *Amount {
	a := Amount(d)
	return &a
}

func missing(path string) error {
	return &domain.StructuralIntegrityError{Path: path, Reason: "required field missing"}
}

func invalid(path string, err error) error {
	return &domain.StructuralIntegrityError{Path: path, Reason: err.Error()}
}

func structuralError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &domain.StructuralIntegrityError{
			Path:   typeErr.Field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	return &domain.StructuralIntegrityError{Reason: err.Error()}
}
