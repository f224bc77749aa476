package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Ssnowzx/Wallet-0201N/internal/fault"
	"github.com/Ssnowzx/Wallet-0201N/internal/storage"
	"github.com/Ssnowzx/Wallet-0201N/internal/tangle"
	"github.com/Ssnowzx/Wallet-0201N/internal/wallet"
)

type API struct {
	storage     *storage.Store
	wallet      *wallet.Service
	replenisher *wallet.Replenisher
	logger      zerolog.Logger
}

func NewAPI(store *storage.Store, svc *wallet.Service, repl *wallet.Replenisher, logger zerolog.Logger) *API {
	return &API{storage: store, wallet: svc, replenisher: repl, logger: logger}
}

// Register wires all routes onto the router.
func (api *API) Register(router *mux.Router) {
	router.HandleFunc("/accounts", api.RegisterAccount).Methods("POST")
	router.HandleFunc("/accounts/me", api.GetOwnAccount).Methods("GET")
	router.HandleFunc("/tx", api.IssueTransaction).Methods("POST")
	router.HandleFunc("/tx", api.GetAllTransactions).Methods("GET")
	router.HandleFunc("/tx/{id}", api.GetTransaction).Methods("GET")
	router.HandleFunc("/stats", api.GetStats).Methods("GET")
	router.HandleFunc("/admin/replenish", api.TriggerReplenish).Methods("POST")
}

func (api *API) writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		api.logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (api *API) writeFault(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch err.(type) {
	case fault.UnauthenticatedError:
		status = http.StatusUnauthorized
	case fault.InvalidArgumentError:
		status = http.StatusBadRequest
	case fault.NotFoundError:
		status = http.StatusNotFound
	case fault.FailedPreconditionError:
		status = http.StatusPreconditionFailed
	case fault.InternalError:
		status = http.StatusInternalServerError
	}
	api.writeJSONResponse(w, status, map[string]string{"error": err.Error()})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}

func (api *API) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartingBalance int64 `json:"startingBalance"`
	}
	if r.Body != nil {
		// empty body is fine, registration has usable defaults
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	acct, err := api.wallet.Register(req.StartingBalance)
	if err != nil {
		api.logger.Error().Err(err).Msg("Failed to register account")
		api.writeFault(w, err)
		return
	}
	api.writeJSONResponse(w, http.StatusCreated, acct)
}

func (api *API) GetOwnAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := api.wallet.Authenticate(bearerToken(r))
	if err != nil {
		api.writeFault(w, err)
		return
	}
	api.writeJSONResponse(w, http.StatusOK, acct)
}

func (api *API) IssueTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ToAddress string `json:"toAddress"`
		Amount    int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.logger.Error().Err(err).Msg("Failed to decode transaction request")
		api.writeJSONResponse(w, http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
		return
	}

	txID, validates, err := api.wallet.Issue(r.Context(), bearerToken(r), req.ToAddress, req.Amount)
	if err != nil {
		api.logger.Error().Err(err).Str("to", req.ToAddress).Msg("Failed to issue transaction")
		api.writeFault(w, err)
		return
	}

	api.logger.Info().Str("tx_id", txID).Msg("Transaction created")
	api.writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"transactionId": txID,
		"validates":     validates,
	})
}

func (api *API) GetTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tx, err := api.storage.GetTransaction(vars["id"])
	if err != nil {
		api.logger.Error().Err(err).Str("tx_id", vars["id"]).Msg("Failed to get transaction")
		api.writeFault(w, err)
		return
	}
	api.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"transaction": tx,
		"confirmed":   tangle.IsConfirmed(tx),
	})
}

func (api *API) GetAllTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}

	txs, total, err := api.storage.TransactionsPage(page, limit)
	if err != nil {
		api.logger.Error().Err(err).Msg("Failed to get all transactions")
		api.writeFault(w, err)
		return
	}

	totalPages := (total + limit - 1) / limit
	api.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"pagination": map[string]int{
			"current_page": page,
			"limit":        limit,
			"total":        total,
			"total_pages":  totalPages,
		},
	})
}

func (api *API) GetStats(w http.ResponseWriter, r *http.Request) {
	all, err := api.storage.Transactions()
	if err != nil {
		api.logger.Error().Err(err).Msg("Failed to compute stats")
		api.writeFault(w, err)
		return
	}

	confirmed := 0
	for _, tx := range all {
		if tangle.IsConfirmed(tx) {
			confirmed++
		}
	}
	api.writeJSONResponse(w, http.StatusOK, map[string]int{
		"total":     len(all),
		"confirmed": confirmed,
		"pending":   len(all) - confirmed,
	})
}

func (api *API) TriggerReplenish(w http.ResponseWriter, r *http.Request) {
	created, err := api.replenisher.ReplenishOnce(r.Context())
	if err != nil {
		api.logger.Error().Err(err).Msg("Manual replenish failed")
		api.writeFault(w, err)
		return
	}
	api.writeJSONResponse(w, http.StatusOK, map[string]int{"created": created})
}
