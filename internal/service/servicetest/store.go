// Package servicetest holds an in-memory implementation of the repositories.
//
// It is imported only by _test.go files of the service and HTTP handler packages and must
// never be wired into cmd/ or any production package.
package servicetest

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/haulbook/haulbook-backend-go/internal/domain/fuel"
	"github.com/haulbook/haulbook-backend-go/internal/domain/load"
	"github.com/haulbook/haulbook-backend-go/internal/domain/paymentmethod"
	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/domain/paystub"
	"github.com/shopspring/decimal"
)

type state struct {
	employees    map[int64]employee.Employee
	loads        map[int64]load.Load
	fuel         map[int64]fuel.Transaction
	history      map[int64]paymentmethod.History
	payrolls     map[int64]payroll.IndividualPayroll
	payrollLoads map[int64]payroll.PayrollLoad
	integrations map[int64]payroll.FuelIntegration
	moves        []payroll.LoadMove
	paystubs     map[int64]paystub.Paystub
	seq          int64
}

func (s *state) clone() state {
	c := *s
	c.employees = maps.Clone(s.employees)
	c.loads = maps.Clone(s.loads)
	c.fuel = maps.Clone(s.fuel)
	c.history = maps.Clone(s.history)
	c.payrolls = maps.Clone(s.payrolls)
	c.payrollLoads = maps.Clone(s.payrollLoads)
	c.integrations = maps.Clone(s.integrations)
	c.moves = append([]payroll.LoadMove(nil), s.moves...)
	c.paystubs = maps.Clone(s.paystubs)
	return c
}

// Store keeps every table in maps. Transactions snapshot the whole state and restore it
// when fn fails.
type Store struct {
	mu sync.Mutex
	st state

	// FailCreatePayrollLoad, when set, is returned by the next CreatePayrollLoad calls.
	FailCreatePayrollLoad error
	// FailFuelIntegration fails CreateFuelIntegration for the given fuel transaction ids.
	FailFuelIntegration map[int64]error
}

func NewStore() *Store {
	return &Store{
		st: state{
			employees:    map[int64]employee.Employee{},
			loads:        map[int64]load.Load{},
			fuel:         map[int64]fuel.Transaction{},
			history:      map[int64]paymentmethod.History{},
			payrolls:     map[int64]payroll.IndividualPayroll{},
			payrollLoads: map[int64]payroll.PayrollLoad{},
			integrations: map[int64]payroll.FuelIntegration{},
			paystubs:     map[int64]paystub.Paystub{},
		},
		FailFuelIntegration: map[int64]error{},
	}
}

func (s *Store) nextID() int64 {
	s.st.seq++
	return s.st.seq
}

type txKey struct{}

// WithinTransaction implements database.Transactor. Nested calls join the outer one.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// ========== SEEDING ==========

func (s *Store) AddEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.nextID()
	}
	if e.Status == "" {
		e.Status = employee.EmploymentStatusActive
	}
	s.st.employees[e.ID] = e
	return e
}

func (s *Store) AddLoad(l load.Load) load.Load {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.nextID()
	}
	if l.Status == "" {
		l.Status = load.StatusDelivered
	}
	s.st.loads[l.ID] = l
	return l
}

func (s *Store) AddFuel(t fuel.Transaction) fuel.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.nextID()
	}
	s.st.fuel[t.ID] = t
	return t
}

func (s *Store) AddHistory(h paymentmethod.History) paymentmethod.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == 0 {
		h.ID = s.nextID()
	}
	s.st.history[h.ID] = h
	return h
}

func (s *Store) AddPayroll(p payroll.IndividualPayroll) payroll.IndividualPayroll {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID()
	}
	s.st.payrolls[p.ID] = p
	return p
}

func (s *Store) AddPayrollLoad(pl payroll.PayrollLoad) payroll.PayrollLoad {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pl.ID == 0 {
		pl.ID = s.nextID()
	}
	s.st.payrollLoads[pl.ID] = pl
	return pl
}

// ========== INSPECTION ==========

func (s *Store) Payroll(id int64) (payroll.IndividualPayroll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.payrolls[id]
	return p, ok
}

func (s *Store) PayrollFor(employeeID int64, weekStart time.Time) (payroll.IndividualPayroll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.st.payrolls {
		if p.EmployeeID == employeeID && p.WeekStart.Equal(weekStart) {
			return p, true
		}
	}
	return payroll.IndividualPayroll{}, false
}

func (s *Store) PayrollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.payrolls)
}

func (s *Store) IntegrationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.integrations)
}

func (s *Store) Moves() []payroll.LoadMove {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]payroll.LoadMove(nil), s.st.moves...)
}

func (s *Store) PayrollLoadsOf(payrollID int64) []payroll.PayrollLoad {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payrollLoadsOf(payrollID)
}

func (s *Store) payrollLoadsOf(payrollID int64) []payroll.PayrollLoad {
	var out []payroll.PayrollLoad
	for _, pl := range s.st.payrollLoads {
		if pl.PayrollID == payrollID {
			out = append(out, pl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoadID < out[j].LoadID })
	return out
}

func (s *Store) HistoryOf(employeeID int64) []paymentmethod.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyOf(employeeID)
}

func (s *Store) historyOf(employeeID int64) []paymentmethod.History {
	var out []paymentmethod.History
	for _, h := range s.st.history {
		if h.EmployeeID == employeeID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveDate.Before(out[j].EffectiveDate) })
	return out
}

func (s *Store) Employee(id int64) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.employees[id]
}

// ========== REPOSITORY VIEWS ==========

func (s *Store) Employees() employee.EmployeeRepository {
	return employeeRepo{s}
}

func (s *Store) Loads() load.LoadRepository {
	return loadRepo{s}
}

func (s *Store) FuelTransactions() fuel.TransactionRepository {
	return fuelRepo{s}
}

func (s *Store) PaymentHistory() paymentmethod.HistoryRepository {
	return historyRepo{s}
}

func (s *Store) Payrolls() payroll.PayrollRepository {
	return payrollRepo{s}
}

func (s *Store) Paystubs() paystub.PaystubRepository {
	return paystubRepo{s}
}


type employeeRepo struct{ s *Store }

func (r employeeRepo) GetByID(_ context.Context, id int64) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.st.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r employeeRepo) GetActiveByIDs(_ context.Context, ids []int64) ([]employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []employee.Employee
	for _, e := range r.s.st.employees {
		if !e.IsActive() {
			continue
		}
		if len(ids) > 0 && !want[e.ID] {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r employeeRepo) FindActiveByName(_ context.Context, name string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found []employee.Employee
	for _, e := range r.s.st.employees {
		if e.IsActive() && strings.EqualFold(strings.TrimSpace(e.Name), strings.TrimSpace(name)) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return employee.Employee{}, employee.ErrEmployeeNotFound
	case 1:
		return found[0], nil
	default:
		return employee.Employee{}, employee.ErrAmbiguousDriverName
	}
}

func (r employeeRepo) UpdatePaymentMethod(_ context.Context, id int64, method employee.PaymentMethod, percentage, mileRate, flatRate *decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.st.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.PaymentMethod = method
	e.PayPercentage = percentage
	e.MileRate = mileRate
	e.FlatRate = flatRate
	r.s.st.employees[id] = e
	return nil
}

type loadRepo struct{ s *Store }

func (r loadRepo) GetByID(_ context.Context, id int64) (load.Load, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.st.loads[id]
	if !ok {
		return load.Load{}, load.ErrLoadNotFound
	}
	return l, nil
}

func (r loadRepo) ListDeliveredByDriver(_ context.Context, driverID int64, from, to time.Time) ([]load.Load, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []load.Load
	for _, l := range r.s.st.loads {
		if l.Status != load.StatusDelivered || l.DriverID == nil || *l.DriverID != driverID || l.DeliveryDate == nil {
			continue
		}
		if l.DeliveryDate.Before(from) || !l.DeliveryDate.Before(to) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fuelRepo struct{ s *Store }

func (r fuelRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]fuel.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []fuel.Transaction
	for _, t := range r.s.st.fuel {
		if t.TransactionDate.Before(from) || !t.TransactionDate.Before(to) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DriverName != out[j].DriverName {
			return out[i].DriverName < out[j].DriverName
		}
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.Before(out[j].TransactionDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type historyRepo struct{ s *Store }

func (r historyRepo) FindEffective(_ context.Context, employeeID int64, date time.Time) (paymentmethod.History, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var (
		best  paymentmethod.History
		found bool
	)
	for _, h := range r.s.historyOf(employeeID) {
		if h.AppliesOn(date) && (!found || !h.EffectiveDate.Before(best.EffectiveDate)) {
			best, found = h, true
		}
	}
	if !found {
		return paymentmethod.History{}, paymentmethod.ErrHistoryNotFound
	}
	return best, nil
}

func (r historyRepo) GetOpen(_ context.Context, employeeID int64) (paymentmethod.History, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, h := range r.s.historyOf(employeeID) {
		if h.EndDate == nil {
			return h, nil
		}
	}
	return paymentmethod.History{}, paymentmethod.ErrHistoryNotFound
}

func (r historyRepo) ListByEmployee(_ context.Context, employeeID int64) ([]paymentmethod.History, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.s.historyOf(employeeID)
	// Newest first, as the SQL repository returns them.
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveDate.After(out[j].EffectiveDate) })
	return out, nil
}

func (r historyRepo) CloseOpen(_ context.Context, employeeID int64, endDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, h := range r.s.st.history {
		if h.EmployeeID == employeeID && h.EndDate == nil {
			end := endDate
			h.EndDate = &end
			r.s.st.history[id] = h
		}
	}
	return nil
}

func (r historyRepo) Create(_ context.Context, entry paymentmethod.History) (paymentmethod.History, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.nextID()
	entry.CreatedAt = time.Now()
	r.s.st.history[entry.ID] = entry
	return entry, nil
}

type payrollRepo struct{ s *Store }

func (r payrollRepo) withName(p payroll.IndividualPayroll) payroll.IndividualPayroll {
	if e, ok := r.s.st.employees[p.EmployeeID]; ok {
		name := e.Name
		p.EmployeeName = &name
	}
	return p
}

func (r payrollRepo) GetByID(_ context.Context, id int64) (payroll.IndividualPayroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.payrolls[id]
	if !ok {
		return payroll.IndividualPayroll{}, payroll.ErrPayrollNotFound
	}
	return r.withName(p), nil
}

func (r payrollRepo) GetByEmployeeWeek(_ context.Context, employeeID int64, weekStart, weekEnd time.Time) (payroll.IndividualPayroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.st.payrolls {
		if p.EmployeeID == employeeID && p.WeekStart.Equal(weekStart) && p.WeekEnd.Equal(weekEnd) {
			return r.withName(p), nil
		}
	}
	return payroll.IndividualPayroll{}, payroll.ErrPayrollNotFound
}

func (r payrollRepo) FindOrCreate(_ context.Context, draft payroll.IndividualPayroll) (payroll.IndividualPayroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.st.payrolls {
		if p.EmployeeID == draft.EmployeeID && p.WeekStart.Equal(draft.WeekStart) && p.WeekEnd.Equal(draft.WeekEnd) {
			return r.withName(p), nil
		}
	}
	draft.ID = r.s.nextID()
	draft.CreatedAt = time.Now()
	draft.UpdatedAt = draft.CreatedAt
	r.s.st.payrolls[draft.ID] = draft
	return r.withName(draft), nil
}

func (r payrollRepo) UpdateTotals(_ context.Context, p payroll.IndividualPayroll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.payrolls[p.ID]
	if !ok {
		return payroll.ErrPayrollNotFound
	}
	cur.TotalLoads = p.TotalLoads
	cur.TotalMiles = p.TotalMiles
	cur.GrossRevenue = p.GrossRevenue
	cur.BasePay = p.BasePay
	cur.FuelDeductions = p.FuelDeductions
	cur.OtherDeductions = p.OtherDeductions
	cur.TotalDeductions = p.TotalDeductions
	cur.GrossPay = p.GrossPay
	cur.NetPay = p.NetPay
	cur.Status = p.Status
	cur.UpdatedAt = time.Now()
	r.s.st.payrolls[p.ID] = cur
	return nil
}

func (r payrollRepo) UpdateStatus(_ context.Context, id int64, status payroll.PayrollStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.payrolls[id]
	if !ok {
		return payroll.ErrPayrollNotFound
	}
	p.Status = status
	r.s.st.payrolls[id] = p
	return nil
}

func (r payrollRepo) List(_ context.Context, f payroll.ListFilter) ([]payroll.IndividualPayroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.IndividualPayroll
	for _, p := range r.s.st.payrolls {
		if f.WeekStart != nil && !p.WeekStart.Equal(*f.WeekStart) {
			continue
		}
		if f.WeekEnd != nil && !p.WeekEnd.Equal(*f.WeekEnd) {
			continue
		}
		if f.EmployeeID != nil && p.EmployeeID != *f.EmployeeID {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		out = append(out, r.withName(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WeekStart.Equal(out[j].WeekStart) {
			return out[i].WeekStart.After(out[j].WeekStart)
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

func (r payrollRepo) ListPayrollLoads(_ context.Context, payrollID int64) ([]payroll.PayrollLoad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.payrollLoadsOf(payrollID), nil
}

func (r payrollRepo) FindPayrollLoadByLoadID(_ context.Context, loadID int64) (payroll.PayrollLoad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, pl := range r.s.st.payrollLoads {
		if pl.LoadID == loadID {
			return pl, nil
		}
	}
	return payroll.PayrollLoad{}, payroll.ErrPayrollLoadNotFound
}

func (r payrollRepo) ReplaceAggregatedLoads(_ context.Context, payrollID int64, loads []payroll.PayrollLoad) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, pl := range r.s.st.payrollLoads {
		if pl.PayrollID == payrollID && !pl.MovedIn {
			delete(r.s.st.payrollLoads, id)
		}
	}
	for _, pl := range loads {
		pl.ID = r.s.nextID()
		pl.PayrollID = payrollID
		pl.MovedIn = false
		r.s.st.payrollLoads[pl.ID] = pl
	}
	return nil
}

func (r payrollRepo) CreatePayrollLoad(_ context.Context, pl payroll.PayrollLoad) (payroll.PayrollLoad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCreatePayrollLoad != nil {
		return payroll.PayrollLoad{}, r.s.FailCreatePayrollLoad
	}
	pl.ID = r.s.nextID()
	pl.CreatedAt = time.Now()
	r.s.st.payrollLoads[pl.ID] = pl
	return pl, nil
}

func (r payrollRepo) DeletePayrollLoad(_ context.Context, payrollID, loadID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, pl := range r.s.st.payrollLoads {
		if pl.PayrollID == payrollID && pl.LoadID == loadID {
			delete(r.s.st.payrollLoads, id)
			return nil
		}
	}
	return payroll.ErrPayrollLoadNotFound
}

func (r payrollRepo) FuelIntegrationExists(_ context.Context, fuelTransactionID int64, weekStart time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, fi := range r.s.st.integrations {
		if fi.FuelTransactionID == fuelTransactionID && fi.WeekStart.Equal(weekStart) {
			return true, nil
		}
	}
	return false, nil
}

func (r payrollRepo) CreateFuelIntegration(_ context.Context, fi payroll.FuelIntegration) (payroll.FuelIntegration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.FailFuelIntegration[fi.FuelTransactionID]; err != nil {
		return payroll.FuelIntegration{}, err
	}
	for _, existing := range r.s.st.integrations {
		if existing.FuelTransactionID == fi.FuelTransactionID && existing.WeekStart.Equal(fi.WeekStart) {
			return payroll.FuelIntegration{}, payroll.ErrFuelAlreadyIntegrated
		}
	}
	fi.ID = r.s.nextID()
	fi.CreatedAt = time.Now()
	fi.UpdatedAt = fi.CreatedAt
	r.s.st.integrations[fi.ID] = fi
	return fi, nil
}

func (r payrollRepo) GetFuelIntegration(_ context.Context, id int64) (payroll.FuelIntegration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	fi, ok := r.s.st.integrations[id]
	if !ok {
		return payroll.FuelIntegration{}, payroll.ErrFuelIntegrationNotFound
	}
	return fi, nil
}

func (r payrollRepo) SetFuelIntegrationIncluded(_ context.Context, id int64, included bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	fi, ok := r.s.st.integrations[id]
	if !ok {
		return payroll.ErrFuelIntegrationNotFound
	}
	fi.IsIncluded = included
	r.s.st.integrations[id] = fi
	return nil
}

func (r payrollRepo) SumIncludedFuelDeductions(_ context.Context, payrollID int64) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, fi := range r.s.st.integrations {
		if fi.PayrollID == payrollID && fi.IsIncluded {
			total = total.Add(fi.DeductionAmount)
		}
	}
	return total, nil
}

func (r payrollRepo) ListFuelIntegrations(_ context.Context, payrollID int64) ([]payroll.FuelIntegration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.FuelIntegration
	for _, fi := range r.s.st.integrations {
		if fi.PayrollID == payrollID {
			out = append(out, fi)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r payrollRepo) SetWeekLock(_ context.Context, weekStart, weekEnd time.Time, locked bool, reviewedBy string, reviewedAt time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.st.payrolls {
		if !p.WeekStart.Equal(weekStart) || !p.WeekEnd.Equal(weekEnd) {
			continue
		}
		p.IsLocked = locked
		if locked {
			by, at := reviewedBy, reviewedAt
			p.ReviewedBy = &by
			p.ReviewedDate = &at
		}
		r.s.st.payrolls[id] = p
		n++
	}
	return n, nil
}

func (r payrollRepo) CountWeek(_ context.Context, weekStart, weekEnd time.Time) (payroll.WeekLockCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var c payroll.WeekLockCount
	for _, p := range r.s.st.payrolls {
		if p.WeekStart.Equal(weekStart) && p.WeekEnd.Equal(weekEnd) {
			c.Total++
			if p.IsLocked {
				c.Locked++
			}
		}
	}
	return c, nil
}

func (r payrollRepo) CreateLoadMove(_ context.Context, m payroll.LoadMove) (payroll.LoadMove, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.moves = append(r.s.st.moves, m)
	return m, nil
}

func (r payrollRepo) ListLoadMoves(_ context.Context, loadID int64) ([]payroll.LoadMove, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.LoadMove
	for i := len(r.s.st.moves) - 1; i >= 0; i-- {
		if r.s.st.moves[i].LoadID == loadID {
			out = append(out, r.s.st.moves[i])
		}
	}
	return out, nil
}

type paystubRepo struct{ s *Store }

func (r paystubRepo) GetByID(_ context.Context, id int64) (paystub.Paystub, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.paystubs[id]
	if !ok {
		return paystub.Paystub{}, paystub.ErrPaystubNotFound
	}
	return p, nil
}

func (r paystubRepo) GetByPayrollID(_ context.Context, payrollID int64) (paystub.Paystub, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.st.paystubs {
		if p.PayrollID == payrollID {
			return p, nil
		}
	}
	return paystub.Paystub{}, paystub.ErrPaystubNotFound
}

func (r paystubRepo) Create(_ context.Context, p paystub.Paystub) (paystub.Paystub, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.st.paystubs[p.ID] = p
	return p, nil
}

func (r paystubRepo) Update(_ context.Context, p paystub.Paystub) (paystub.Paystub, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.paystubs[p.ID]; !ok {
		return paystub.Paystub{}, paystub.ErrPaystubNotFound
	}
	p.UpdatedAt = time.Now()
	r.s.st.paystubs[p.ID] = p
	return p, nil
}

func (r paystubRepo) ListByWeek(_ context.Context, weekStart, weekEnd time.Time) ([]paystub.Paystub, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []paystub.Paystub
	for _, p := range r.s.st.paystubs {
		if p.WeekStart.Equal(weekStart) && p.WeekEnd.Equal(weekEnd) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}
