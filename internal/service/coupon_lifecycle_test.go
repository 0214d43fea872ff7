package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"coupon-api/internal/domain"
	"coupon-api/internal/repository"
)

type lifecycleFixture struct {
	lifecycle *CouponLifecycle
	coupons   *repository.MemoryCouponRepository
	customers *repository.MemoryCustomerRepository
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	coupons := repository.NewMemoryCouponRepository()
	customers := repository.NewMemoryCustomerRepository()
	return &lifecycleFixture{
		lifecycle: NewCouponLifecycle(zap.NewNop(), coupons, customers),
		coupons:   coupons,
		customers: customers,
	}
}

func (f *lifecycleFixture) seedCustomer(t *testing.T, id string) {
	t.Helper()
	err := f.customers.Save(context.Background(), domain.Customer{
		ID:        id,
		Email:     id + "@test.com",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}

func (f *lifecycleFixture) seedCoupon(t *testing.T, id string, amount int, endDate time.Time) {
	t.Helper()
	err := f.coupons.Save(context.Background(), domain.Coupon{
		ID:        id,
		CompanyID: "comp-1",
		Category:  domain.CategoryFood,
		Title:     "coupon " + id,
		StartDate: time.Now().UTC().Add(-24 * time.Hour),
		EndDate:   endDate,
		Amount:    amount,
		Price:     9.99,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed coupon: %v", err)
	}
}

func TestPurchase_Success(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCustomer(t, "cust-1")
	f.seedCoupon(t, "coup-1", 5, time.Now().Add(24*time.Hour))

	if err := f.lifecycle.Purchase(context.Background(), "cust-1", "coup-1"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	coupon, err := f.coupons.FindByID(context.Background(), "coup-1")
	if err != nil {
		t.Fatalf("find coupon: %v", err)
	}
	if coupon.Amount != 4 {
		t.Fatalf("expected amount 4, got %d", coupon.Amount)
	}
	customer, err := f.customers.FindByID(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("find customer: %v", err)
	}
	if !customer.HasCoupon("coup-1") {
		t.Fatal("expected purchase association")
	}
}

func TestPurchase_ExpiredCoupon(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCustomer(t, "cust-1")
	f.seedCoupon(t, "coup-1", 5, time.Now().Add(-time.Hour))

	if err := f.lifecycle.Purchase(context.Background(), "cust-1", "coup-1"); !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("expected ErrCouponExpired, got %v", err)
	}

	coupon, _ := f.coupons.FindByID(context.Background(), "coup-1")
	if coupon.Amount != 5 {
		t.Fatalf("amount mutated on failed purchase: %d", coupon.Amount)
	}
	customer, _ := f.customers.FindByID(context.Background(), "cust-1")
	if len(customer.CouponIDs) != 0 {
		t.Fatalf("association created on failed purchase: %v", customer.CouponIDs)
	}
}

func TestPurchase_InsufficientAmount(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCustomer(t, "cust-1")
	f.seedCoupon(t, "coup-1", 0, time.Now().Add(24*time.Hour))

	if err := f.lifecycle.Purchase(context.Background(), "cust-1", "coup-1"); !errors.Is(err, ErrInsufficientAmount) {
		t.Fatalf("expected ErrInsufficientAmount, got %v", err)
	}
}

func TestPurchase_DoublePurchase(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCustomer(t, "cust-1")
	f.seedCoupon(t, "coup-1", 5, time.Now().Add(24*time.Hour))

	if err := f.lifecycle.Purchase(context.Background(), "cust-1", "coup-1"); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	if err := f.lifecycle.Purchase(context.Background(), "cust-1", "coup-1"); !errors.Is(err, ErrAlreadyPurchased) {
		t.Fatalf("expected ErrAlreadyPurchased, got %v", err)
	}

	customer, _ := f.customers.FindByID(context.Background(), "cust-1")
	if len(customer.CouponIDs) != 1 {
		t.Fatalf("association set grew on double purchase: %v", customer.CouponIDs)
	}
	coupon, _ := f.coupons.FindByID(context.Background(), "coup-1")
	if coupon.Amount != 4 {
		t.Fatalf("expected amount 4, got %d", coupon.Amount)
	}
}

func TestPurchase_UnknownCoupon(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCustomer(t, "cust-1")

	if err := f.lifecycle.Purchase(context.Background(), "cust-1", "missing"); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
}

func TestPurchase_LastUnitRace(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCoupon(t, "coup-1", 1, time.Now().Add(24*time.Hour))

	const buyers = 20
	for i := 0; i < buyers; i++ {
		f.seedCustomer(t, customerID(i))
	}

	var wg sync.WaitGroup
	results := make([]error, buyers)
	wg.Add(buyers)
	for i := 0; i < buyers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = f.lifecycle.Purchase(context.Background(), customerID(i), "coup-1")
		}(i)
	}
	wg.Wait()

	var successes, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInsufficientAmount):
			insufficient++
		default:
			t.Fatalf("unexpected purchase error: %v", err)
		}
	}
	if successes != 1 || insufficient != buyers-1 {
		t.Fatalf("expected 1 success and %d rejections, got %d/%d", buyers-1, successes, insufficient)
	}

	coupon, err := f.coupons.FindByID(context.Background(), "coup-1")
	if err != nil {
		t.Fatalf("find coupon: %v", err)
	}
	if coupon.Amount != 0 {
		t.Fatalf("expected amount 0, got %d", coupon.Amount)
	}
	holders, _ := f.customers.FindByCoupon(context.Background(), "coup-1")
	if len(holders) != 1 {
		t.Fatalf("expected exactly one purchase association, got %d", len(holders))
	}
}

func customerID(i int) string {
	return "cust-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}

func TestRetract_CascadesPurchases(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCustomer(t, "cust-1")
	f.seedCustomer(t, "cust-2")
	f.seedCoupon(t, "coup-1", 5, time.Now().Add(24*time.Hour))

	for _, cust := range []string{"cust-1", "cust-2"} {
		if err := f.lifecycle.Purchase(context.Background(), cust, "coup-1"); err != nil {
			t.Fatalf("purchase %s: %v", cust, err)
		}
	}

	if err := f.lifecycle.Retract(context.Background(), "coup-1"); err != nil {
		t.Fatalf("retract: %v", err)
	}

	if _, err := f.coupons.FindByID(context.Background(), "coup-1"); err == nil {
		t.Fatal("expected coupon gone after retract")
	}
	for _, cust := range []string{"cust-1", "cust-2"} {
		customer, _ := f.customers.FindByID(context.Background(), cust)
		if customer.HasCoupon("coup-1") {
			t.Fatalf("dangling association for %s", cust)
		}
	}
}

func TestRetract_SecondCallNotFound(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCoupon(t, "coup-1", 5, time.Now().Add(24*time.Hour))

	if err := f.lifecycle.Retract(context.Background(), "coup-1"); err != nil {
		t.Fatalf("retract: %v", err)
	}
	if err := f.lifecycle.Retract(context.Background(), "coup-1"); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound on second retract, got %v", err)
	}
}

func TestPurchase_AfterRetractNotFound(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCustomer(t, "cust-1")
	f.seedCoupon(t, "coup-1", 5, time.Now().Add(24*time.Hour))

	if err := f.lifecycle.Retract(context.Background(), "coup-1"); err != nil {
		t.Fatalf("retract: %v", err)
	}
	if err := f.lifecycle.Purchase(context.Background(), "cust-1", "coup-1"); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
}

func TestPurchase_RetractRaceLeavesNoDanglingAssociation(t *testing.T) {
	f := newLifecycleFixture(t)

	const rounds = 25
	for i := 0; i < rounds; i++ {
		couponID := "coup-" + string(rune('a'+i))
		custID := "cust-" + string(rune('a'+i))
		f.seedCustomer(t, custID)
		f.seedCoupon(t, couponID, 3, time.Now().Add(24*time.Hour))

		var wg sync.WaitGroup
		var purchaseErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			purchaseErr = f.lifecycle.Purchase(context.Background(), custID, couponID)
		}()
		go func() {
			defer wg.Done()
			if err := f.lifecycle.Retract(context.Background(), couponID); err != nil && !errors.Is(err, ErrCouponNotFound) {
				t.Errorf("retract: %v", err)
			}
		}()
		wg.Wait()

		// O la compra tomo el lock primero y termino completa antes del
		// retiro, o el retiro gano y la compra fallo NotFound. En ambos
		// ordenes el cupon termina borrado y sin asociaciones colgando.
		if purchaseErr != nil && !errors.Is(purchaseErr, ErrCouponNotFound) {
			t.Fatalf("unexpected purchase error: %v", purchaseErr)
		}
		if _, err := f.coupons.FindByID(context.Background(), couponID); err == nil {
			t.Fatalf("coupon %s still present after retract", couponID)
		}
		customer, _ := f.customers.FindByID(context.Background(), custID)
		if customer.HasCoupon(couponID) {
			t.Fatalf("dangling association to retracted coupon %s", couponID)
		}
	}
}

func TestUpdateCoupon_OwnershipAndTitleConflict(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCoupon(t, "coup-1", 5, time.Now().Add(24*time.Hour))
	f.seedCoupon(t, "coup-2", 5, time.Now().Add(24*time.Hour))

	// Otro company id no puede tocar el cupon.
	_, err := f.lifecycle.UpdateCoupon(context.Background(), "comp-2", domain.Coupon{ID: "coup-1", Title: "nuevo"})
	if !errors.Is(err, ErrCouponOwnership) {
		t.Fatalf("expected ErrCouponOwnership, got %v", err)
	}

	// Chocar con el titulo de otro cupon de la misma compania es conflicto.
	_, err = f.lifecycle.UpdateCoupon(context.Background(), "comp-1", domain.Coupon{ID: "coup-1", Title: "Coupon coup-2"})
	if !errors.Is(err, ErrCouponExists) {
		t.Fatalf("expected ErrCouponExists, got %v", err)
	}

	// Una actualizacion valida conserva la compania duena.
	updated, err := f.lifecycle.UpdateCoupon(context.Background(), "comp-1", domain.Coupon{
		ID:        "coup-1",
		CompanyID: "comp-999",
		Title:     "titulo nuevo",
		Category:  domain.CategoryVacation,
		EndDate:   time.Now().Add(48 * time.Hour),
		Amount:    7,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CompanyID != "comp-1" {
		t.Fatalf("owning company changed: %s", updated.CompanyID)
	}
	if updated.Amount != 7 || updated.Title != "titulo nuevo" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
}

func TestUpdateCoupon_NotFound(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.lifecycle.UpdateCoupon(context.Background(), "comp-1", domain.Coupon{ID: "missing", Title: "x"})
	if !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
}

func TestAddCoupon_DuplicateTitle(t *testing.T) {
	f := newLifecycleFixture(t)

	first := domain.Coupon{
		Category: domain.CategoryFood,
		Title:    "Pizza grande",
		EndDate:  time.Now().Add(24 * time.Hour),
		Amount:   10,
	}
	if _, err := f.lifecycle.AddCoupon(context.Background(), "comp-1", first); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.lifecycle.AddCoupon(context.Background(), "comp-1", domain.Coupon{Title: "pizza GRANDE"}); !errors.Is(err, ErrCouponExists) {
		t.Fatalf("expected ErrCouponExists, got %v", err)
	}
	// La misma marca en otra compania no es conflicto.
	if _, err := f.lifecycle.AddCoupon(context.Background(), "comp-2", domain.Coupon{Title: "Pizza grande"}); err != nil {
		t.Fatalf("add for other company: %v", err)
	}
}

func TestAddCoupon_AssignsID(t *testing.T) {
	f := newLifecycleFixture(t)

	added, err := f.lifecycle.AddCoupon(context.Background(), "comp-1", domain.Coupon{Title: "Con id propio", ID: "ignored"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.ID == "" || added.ID == "ignored" {
		t.Fatalf("expected generated id, got %q", added.ID)
	}
	if added.CompanyID != "comp-1" {
		t.Fatalf("expected company binding, got %q", added.CompanyID)
	}
}

// retractHookCustomerRepo intercala una accion entre la lectura de
// holders de Retract y el borrado de la asociacion.
type retractHookCustomerRepo struct {
	*repository.MemoryCustomerRepository
	beforeRemove func()
}

func (r *retractHookCustomerRepo) RemovePurchase(ctx context.Context, customerID, couponID string) error {
	if r.beforeRemove != nil {
		hook := r.beforeRemove
		r.beforeRemove = nil
		hook()
	}
	return r.MemoryCustomerRepository.RemovePurchase(ctx, customerID, couponID)
}

func TestRetract_KeepsPurchaseOfOtherCouponCommittedMidRetract(t *testing.T) {
	coupons := repository.NewMemoryCouponRepository()
	customers := repository.NewMemoryCustomerRepository()
	hooked := &retractHookCustomerRepo{MemoryCustomerRepository: customers}
	lifecycle := NewCouponLifecycle(zap.NewNop(), coupons, hooked)

	if err := customers.Save(context.Background(), domain.Customer{ID: "cust-x", Email: "x@test.com"}); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	for _, id := range []string{"coup-a", "coup-b"} {
		err := coupons.Save(context.Background(), domain.Coupon{
			ID:        id,
			CompanyID: "comp-1",
			Title:     "coupon " + id,
			EndDate:   time.Now().Add(24 * time.Hour),
			Amount:    5,
		})
		if err != nil {
			t.Fatalf("seed coupon %s: %v", id, err)
		}
	}
	if err := lifecycle.Purchase(context.Background(), "cust-x", "coup-a"); err != nil {
		t.Fatalf("purchase coup-a: %v", err)
	}

	// Entre que Retract(coup-a) leyo los holders y borra la asociacion,
	// el mismo cliente compra el cupon vivo coup-b.
	hooked.beforeRemove = func() {
		if err := lifecycle.Purchase(context.Background(), "cust-x", "coup-b"); err != nil {
			t.Errorf("mid-retract purchase: %v", err)
		}
	}
	if err := lifecycle.Retract(context.Background(), "coup-a"); err != nil {
		t.Fatalf("retract: %v", err)
	}

	customer, err := customers.FindByID(context.Background(), "cust-x")
	if err != nil {
		t.Fatalf("find customer: %v", err)
	}
	if customer.HasCoupon("coup-a") {
		t.Fatal("retracted association survived")
	}
	if !customer.HasCoupon("coup-b") {
		t.Fatal("purchase of live coupon erased by concurrent retract")
	}
	couponB, err := coupons.FindByID(context.Background(), "coup-b")
	if err != nil {
		t.Fatalf("find coup-b: %v", err)
	}
	if couponB.Amount != 4 {
		t.Fatalf("expected coup-b amount 4, got %d", couponB.Amount)
	}
}

func TestPurchase_ConcurrentDistinctCouponsSameCustomer(t *testing.T) {
	f := newLifecycleFixture(t)
	f.seedCustomer(t, "cust-1")
	f.seedCoupon(t, "coup-1", 5, time.Now().Add(24*time.Hour))
	f.seedCoupon(t, "coup-2", 5, time.Now().Add(24*time.Hour))

	var wg sync.WaitGroup
	for _, id := range []string{"coup-1", "coup-2"} {
		wg.Add(1)
		go func(couponID string) {
			defer wg.Done()
			if err := f.lifecycle.Purchase(context.Background(), "cust-1", couponID); err != nil {
				t.Errorf("purchase %s: %v", couponID, err)
			}
		}(id)
	}
	wg.Wait()

	customer, err := f.customers.FindByID(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("find customer: %v", err)
	}
	if !customer.HasCoupon("coup-1") || !customer.HasCoupon("coup-2") {
		t.Fatalf("expected both associations, got %v", customer.CouponIDs)
	}
	for _, id := range []string{"coup-1", "coup-2"} {
		coupon, err := f.coupons.FindByID(context.Background(), id)
		if err != nil {
			t.Fatalf("find %s: %v", id, err)
		}
		if coupon.Amount != 4 {
			t.Fatalf("expected %s amount 4, got %d", id, coupon.Amount)
		}
	}
}
