package handler

import (
	"net/http"
	"strconv"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
)

// HandleGetTransaction returns the journal for a payment reference
// @Summary      Journal entries for a reference
// @Tags         transactions
// @Produce      json
// @Param        reference  path      string       true  "Payment reference"
// @Success      200        {object}  APIResponse
// @Failure      404        {object}  APIResponse
// @Router       /transactions/{reference} [get]
func (h *PaymentHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	reference := r.PathValue("reference")
	if reference == "" {
		respondWithError(w, h.logger, domain.NewValidationError("reference", "is required"))
		return
	}

	txs, err := h.service.GetTransaction(r.Context(), reference)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	respondWithJSON(w, http.StatusOK, out)
}

// HandleQueryProcessor asks the processor for the current state of a transaction
// @Summary      Processor transaction state
// @Tags         transactions
// @Produce      json
// @Param        internalReference  path      int          true  "Processor internal reference"
// @Success      200                {object}  APIResponse
// @Failure      400                {object}  APIResponse
// @Failure      502                {object}  APIResponse
// @Router       /processor/transactions/{internalReference} [get]
func (h *PaymentHandler) HandleQueryProcessor(w http.ResponseWriter, r *http.Request) {
	internalReference, err := strconv.ParseInt(r.PathValue("internalReference"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, domain.NewValidationError("internalReference", "must be an integer"))
		return
	}

	resp, err := h.service.Query(r.Context(), internalReference)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
