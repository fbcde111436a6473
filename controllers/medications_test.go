package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"hospital-admin-api/models"
)

func TestMedicationLifecycle(t *testing.T) {
	te := newTestEnv(t)
	te.createUser("reception", "right-password-9", models.RoleReceptionist)
	sess := te.login("reception", "right-password-9")

	w := te.request(http.MethodPost, "/api/medications", gin.H{
		"name":           "Amoxicillin 500mg",
		"dosage_form":    "capsule",
		"stock_quantity": 10,
		"minimum_stock":  3,
		"expiry_date":    "2027-01-31",
	}, sess)
	if w.Code != http.StatusOK {
		t.Fatalf("create: code = %d: %s", w.Code, w.Body.String())
	}
	env := te.decode(w)
	ref, _ := env.Data["ref"].(string)
	if ref == "" {
		t.Fatal("create returned no ref")
	}

	// Duplicate name is a conflict.
	w = te.request(http.MethodPost, "/api/medications", gin.H{
		"name": "Amoxicillin 500mg",
	}, sess)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate name: code = %d, want 409", w.Code)
	}

	// Draw down stock.
	w = te.request(http.MethodPost, "/api/medications/"+ref+"/adjust-stock", gin.H{
		"delta":  -4,
		"reason": "dispensed to ward 3",
	}, sess)
	if w.Code != http.StatusOK {
		t.Fatalf("adjust: code = %d: %s", w.Code, w.Body.String())
	}
	env = te.decode(w)
	if int(env.Data["stock_quantity"].(float64)) != 6 {
		t.Fatalf("stock = %v, want 6", env.Data["stock_quantity"])
	}

	// Going negative rolls back.
	w = te.request(http.MethodPost, "/api/medications/"+ref+"/adjust-stock", gin.H{
		"delta":  -10,
		"reason": "oversized draw",
	}, sess)
	if w.Code != http.StatusConflict {
		t.Fatalf("negative stock: code = %d, want 409", w.Code)
	}

	var stored models.Medication
	if err := te.db.Where("ref = ?", ref).First(&stored).Error; err != nil {
		t.Fatalf("reload medication: %v", err)
	}
	if stored.StockQuantity != 6 {
		t.Fatalf("stock after failed adjust = %d, want 6", stored.StockQuantity)
	}
}

func TestMedicationLowStockFilter(t *testing.T) {
	te := newTestEnv(t)
	te.createUser("reception", "right-password-9", models.RoleReceptionist)
	sess := te.login("reception", "right-password-9")

	te.request(http.MethodPost, "/api/medications", gin.H{
		"name": "Ibuprofen 200mg", "stock_quantity": 50, "minimum_stock": 10,
	}, sess)
	te.request(http.MethodPost, "/api/medications", gin.H{
		"name": "Insulin glargine", "stock_quantity": 2, "minimum_stock": 5,
	}, sess)

	env := te.decode(te.request(http.MethodGet, "/api/medications?low_stock=true", nil, sess))
	medications, _ := env.Data["medications"].([]interface{})
	if len(medications) != 1 {
		t.Fatalf("low stock filter returned %d, want 1", len(medications))
	}
	low, _ := medications[0].(map[string]interface{})
	if low["name"] != "Insulin glargine" || low["low_stock"] != true {
		t.Fatalf("unexpected low stock row: %v", low)
	}
}
