package transactiondelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-petr/card-bank/internal/domain"
	"github.com/go-petr/card-bank/internal/middleware"
	"github.com/go-petr/card-bank/internal/test"
	"github.com/go-petr/card-bank/pkg/errorspkg"
	"github.com/go-petr/card-bank/pkg/randompkg"
	"github.com/go-petr/card-bank/pkg/tokenpkg"
	"github.com/go-petr/card-bank/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func movedResult(account domain.Account, txType, amount string) domain.TransactionTxResult {
	transaction := test.RandomTransaction(account.ID, txType)
	transaction.Amount = amount
	transaction.Notes = "Account Balance " + account.Balance

	return domain.TransactionTxResult{
		Transaction: transaction,
		Account:     account,
	}
}

type movementBody struct {
	CardNumber string `json:"card_number,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	Amount     string `json:"amount,omitempty"`
}

func serveMovement(t *testing.T, service *MockService, path string, body movementBody) *httptest.ResponseRecorder {
	t.Helper()

	handler := NewHandler(service)

	server := gin.New()
	server.POST("/transactions/deposit", handler.Deposit)
	server.POST("/transactions/withdraw", handler.Withdraw)

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Encoding request body error: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	return recorder
}

func TestDeposit(t *testing.T) {
	owner := randompkg.Email()
	account := test.RandomAccount(owner)
	amount := "100"

	testCases := []struct {
		name           string
		requestBody    movementBody
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			requestBody: movementBody{
				CardNumber: account.CardNumber,
				Amount:     amount,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(account.CardNumber), gomock.Eq(amount)).
					Times(1).
					Return(movedResult(account, domain.Deposit, amount), nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingCardNumber",
			requestBody: movementBody{
				Amount: amount,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "CardNumber is required",
		},
		{
			name: "ShortCardNumber",
			requestBody: movementBody{
				CardNumber: "1234",
				Amount:     amount,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "CardNumber must be exactly 16 characters",
		},
		{
			name: "ErrInvalidAmount",
			requestBody: movementBody{
				CardNumber: account.CardNumber,
				Amount:     "-100",
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(account.CardNumber), gomock.Eq("-100")).
					Times(1).
					Return(domain.TransactionTxResult{}, domain.ErrInvalidAmount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidAmount.Error(),
		},
		{
			name: "ErrBadCredentials",
			requestBody: movementBody{
				CardNumber: account.CardNumber,
				Amount:     amount,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(account.CardNumber), gomock.Eq(amount)).
					Times(1).
					Return(domain.TransactionTxResult{}, domain.ErrBadCredentials)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      domain.ErrBadCredentials.Error(),
		},
		{
			name: "InternalError",
			requestBody: movementBody{
				CardNumber: account.CardNumber,
				Amount:     amount,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(account.CardNumber), gomock.Eq(amount)).
					Times(1).
					Return(domain.TransactionTxResult{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			service := NewMockService(ctrl)

			tc.buildStubs(service)

			recorder := serveMovement(t, service, "/transactions/deposit", tc.requestBody)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{Data: &movementData{}}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			got := res.Data.(*movementData)
			if got.Amount != amount {
				t.Errorf("res.Data.Amount=%v, want %v", got.Amount, amount)
			}

			if got.Balance != account.Balance {
				t.Errorf("res.Data.Balance=%v, want %v", got.Balance, account.Balance)
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	owner := randompkg.Email()
	account := test.RandomAccount(owner)
	amount := "100"

	testCases := []struct {
		name           string
		requestBody    movementBody
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			requestBody: movementBody{
				CardNumber: account.CardNumber,
				CVV:        account.CVV,
				Amount:     amount,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(account.CardNumber), gomock.Eq(account.CVV), gomock.Eq(amount)).
					Times(1).
					Return(movedResult(account, domain.Withdraw, amount), nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingCVV",
			requestBody: movementBody{
				CardNumber: account.CardNumber,
				Amount:     amount,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "CVV is required",
		},
		{
			name: "NonNumericCVV",
			requestBody: movementBody{
				CardNumber: account.CardNumber,
				CVV:        "a1b",
				Amount:     amount,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "CVV must be numeric",
		},
		{
			name: "ErrInsufficientBalance",
			requestBody: movementBody{
				CardNumber: account.CardNumber,
				CVV:        account.CVV,
				Amount:     amount,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(account.CardNumber), gomock.Eq(account.CVV), gomock.Eq(amount)).
					Times(1).
					Return(domain.TransactionTxResult{}, domain.ErrInsufficientBalance)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInsufficientBalance.Error(),
		},
		{
			name: "InternalError",
			requestBody: movementBody{
				CardNumber: account.CardNumber,
				CVV:        account.CVV,
				Amount:     amount,
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(account.CardNumber), gomock.Eq(account.CVV), gomock.Eq(amount)).
					Times(1).
					Return(domain.TransactionTxResult{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			service := NewMockService(ctrl)

			tc.buildStubs(service)

			recorder := serveMovement(t, service, "/transactions/withdraw", tc.requestBody)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{Data: &movementData{}}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			got := res.Data.(*movementData)
			if got.Amount != amount {
				t.Errorf("res.Data.Amount=%v, want %v", got.Amount, amount)
			}
		})
	}
}

// TestWithdrawRejectionsIndistinguishable checks that a withdrawal against an
// unknown card and one with the wrong CVV produce byte-identical responses, so
// a caller cannot probe which card numbers exist.
func TestWithdrawRejectionsIndistinguishable(t *testing.T) {
	amount := "100"
	unknownCard := randompkg.CardNumber()
	knownCard := randompkg.CardNumber()
	wrongCVV := randompkg.CVV()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service := NewMockService(ctrl)

	service.EXPECT().
		Withdraw(gomock.Any(), gomock.Eq(unknownCard), gomock.Any(), gomock.Eq(amount)).
		Times(1).
		Return(domain.TransactionTxResult{}, domain.ErrBadCredentials)

	service.EXPECT().
		Withdraw(gomock.Any(), gomock.Eq(knownCard), gomock.Eq(wrongCVV), gomock.Eq(amount)).
		Times(1).
		Return(domain.TransactionTxResult{}, domain.ErrBadCredentials)

	unknownCardRec := serveMovement(t, service, "/transactions/withdraw", movementBody{
		CardNumber: unknownCard,
		CVV:        randompkg.CVV(),
		Amount:     amount,
	})

	wrongCVVRec := serveMovement(t, service, "/transactions/withdraw", movementBody{
		CardNumber: knownCard,
		CVV:        wrongCVV,
		Amount:     amount,
	})

	if unknownCardRec.Code != http.StatusUnauthorized {
		t.Errorf("Status code: got %v, want %v", unknownCardRec.Code, http.StatusUnauthorized)
	}

	if unknownCardRec.Code != wrongCVVRec.Code {
		t.Errorf("Status codes differ: unknown card %v, wrong CVV %v", unknownCardRec.Code, wrongCVVRec.Code)
	}

	if !bytes.Equal(unknownCardRec.Body.Bytes(), wrongCVVRec.Body.Bytes()) {
		t.Errorf("Response bodies differ: unknown card %q, wrong CVV %q",
			unknownCardRec.Body.String(), wrongCVVRec.Body.String())
	}
}

func TestList(t *testing.T) {
	owner := randompkg.Email()
	account := test.RandomAccount(owner)
	tokenSymmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(tokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", tokenSymmetricKey, err)
	}

	authType := middleware.AuthTypeBearer
	duration := time.Minute

	n := 5
	transactions := make([]domain.Transaction, n)

	for i := 0; i < n; i++ {
		transactions[i] = test.RandomTransaction(account.ID, domain.Deposit)
	}

	testCases := []struct {
		name           string
		cardNumber     string
		pageID         int32
		pageSize       int32
		setupAuth      func(t *testing.T, r *http.Request) error
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
		checkData      func(data any)
	}{
		{
			name:       "OK",
			cardNumber: account.CardNumber,
			pageID:     1,
			pageSize:   10,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, owner, duration)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(owner), gomock.Eq(account.CardNumber), gomock.Eq(int32(10)), gomock.Eq(int32(1))).
					Times(1).
					Return(transactions, nil)
			},
			wantStatusCode: http.StatusOK,
			checkData: func(data any) {
				got, ok := data.(*struct {
					Transactions []domain.Transaction `json:"transactions"`
				})
				if !ok {
					t.Errorf(`res.Data=%v, failed type conversion`, data)
				}

				want := transactions

				compareCreatedAt := cmpopts.EquateApproxTime(time.Second)
				if diff := cmp.Diff(want, got.Transactions, compareCreatedAt); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:       "NoAuthorization",
			cardNumber: account.CardNumber,
			pageID:     1,
			pageSize:   10,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return nil
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name:       "InvalidPageID",
			cardNumber: account.CardNumber,
			pageID:     0,
			pageSize:   10,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, owner, duration)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "PageID is required",
		},
		{
			name:       "ErrAccountNotFound",
			cardNumber: account.CardNumber,
			pageID:     1,
			pageSize:   10,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, owner, duration)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(owner), gomock.Eq(account.CardNumber), gomock.Eq(int32(10)), gomock.Eq(int32(1))).
					Times(1).
					Return(nil, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name:       "ErrAccountOwnerMismatch",
			cardNumber: account.CardNumber,
			pageID:     1,
			pageSize:   10,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, owner, duration)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(owner), gomock.Eq(account.CardNumber), gomock.Eq(int32(10)), gomock.Eq(int32(1))).
					Times(1).
					Return(nil, domain.ErrAccountOwnerMismatch)
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      domain.ErrAccountOwnerMismatch.Error(),
		},
		{
			name:       "InternalError",
			cardNumber: account.CardNumber,
			pageID:     1,
			pageSize:   10,
			setupAuth: func(t *testing.T, r *http.Request) error {
				return middleware.AddAuthorization(r, tokenMaker, authType, owner, duration)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					List(gomock.Any(), gomock.Eq(owner), gomock.Eq(account.CardNumber), gomock.Eq(int32(10)), gomock.Eq(int32(1))).
					Times(1).
					Return(nil, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			service := NewMockService(ctrl)
			handler := NewHandler(service)

			server := gin.New()
			server.Use(middleware.AuthMiddleware(tokenMaker))
			server.GET("/transactions", handler.List)

			tc.buildStubs(service)

			url := fmt.Sprintf("/transactions?card_number=%v&page_id=%v&page_size=%v",
				tc.cardNumber, tc.pageID, tc.pageSize)

			req, err := http.NewRequest(http.MethodGet, url, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err = tc.setupAuth(t, req); err != nil {
				t.Fatalf("tc.setupAuth(t, %+v) returned error: %v", req, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{
				Data: &struct {
					Transactions []domain.Transaction `json:"transactions"`
				}{},
			}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}
			} else {
				tc.checkData(res.Data)
			}
		})
	}
}
