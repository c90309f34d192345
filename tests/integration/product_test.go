//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != seededProducts {
		t.Fatalf("expected %d products, got %d", seededProducts, len(products))
	}
}

func TestGetProduct_Fields(t *testing.T) {
	croissant := findProduct(t, "Croissant")

	resp := doGet(t, "/api/products/"+croissant.ID)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.Name != "Croissant" {
		t.Errorf("name: got %q, want %q", p.Name, "Croissant")
	}
	if p.Price != "1.8" {
		t.Errorf("price: got %q, want %q", p.Price, "1.8")
	}
	if p.Category != "Bakery" {
		t.Errorf("category: got %q, want %q", p.Category, "Bakery")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/no-such-product")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestCreateAndDeleteProduct(t *testing.T) {
	resp := doPost(t, "/api/products", map[string]any{
		"name":     "Integration Special",
		"price":    "9.99",
		"category": "Snacks",
		"stock":    5,
	})
	created := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	if created.ID == "" {
		t.Fatal("create: expected a generated product ID")
	}
	if created.Price != "9.99" {
		t.Errorf("create: price got %q, want %q", created.Price, "9.99")
	}

	del := doReq(t, http.MethodDelete, "/api/products/"+created.ID, nil)
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", del.StatusCode)
	}

	gone := doGet(t, "/api/products/"+created.ID)
	gone.Body.Close()
	if gone.StatusCode != http.StatusNotFound {
		t.Fatalf("after delete: expected 404, got %d", gone.StatusCode)
	}
}

func TestCreateProduct_RejectsNegativePrice(t *testing.T) {
	resp := doPost(t, "/api/products", map[string]any{
		"name":  "Bad Price",
		"price": "-1.00",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
