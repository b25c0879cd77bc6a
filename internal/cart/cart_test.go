package cart

import (
	"errors"
	"testing"

	"kartly_back_end/internal/models"
)

func item(id string, qty int) models.CartItem {
	return models.CartItem{ID: id, Title: "Article " + id, Price: 9.99, Img: "/img/" + id + ".jpg", Quantity: qty}
}

func saved(id string) models.SavedItem {
	return models.SavedItem{ID: id, Title: "Article " + id, Price: 9.99, Img: "/img/" + id + ".jpg"}
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	c := &models.Cart{UserID: "u1"}

	if err := AddItem(c, item("x", 2)); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := AddItem(c, item("x", 3)); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if len(c.Items) != 1 {
		t.Fatalf("attendu 1 article, obtenu %d", len(c.Items))
	}
	if c.Items[0].Quantity != 5 {
		t.Errorf("quantité attendue 5, obtenue %d", c.Items[0].Quantity)
	}
}

func TestAddItemPreservesArrivalOrder(t *testing.T) {
	c := &models.Cart{UserID: "u1"}
	for _, id := range []string{"a", "b", "c"} {
		if err := AddItem(c, item(id, 1)); err != nil {
			t.Fatalf("AddItem(%s): %v", id, err)
		}
	}
	// incrément au milieu, l'ordre ne bouge pas
	if err := AddItem(c, item("b", 4)); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if c.Items[i].ID != id {
			t.Errorf("position %d : attendu %q, obtenu %q", i, id, c.Items[i].ID)
		}
	}
	if c.Items[1].Quantity != 5 {
		t.Errorf("quantité attendue 5, obtenue %d", c.Items[1].Quantity)
	}
}

func TestAddItemRejectsBadInput(t *testing.T) {
	c := &models.Cart{UserID: "u1"}

	if err := AddItem(c, item("x", 0)); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("quantité 0 : attendu ErrInvalidQuantity, obtenu %v", err)
	}
	bad := item("y", 1)
	bad.Price = -1
	if err := AddItem(c, bad); !errors.Is(err, ErrInvalidItem) {
		t.Errorf("prix négatif : attendu ErrInvalidItem, obtenu %v", err)
	}
	if len(c.Items) != 0 {
		t.Errorf("le panier ne doit pas être modifié en cas d'erreur")
	}
}

func TestSaveForLaterIsIdempotent(t *testing.T) {
	c := &models.Cart{UserID: "u1"}

	if err := SaveForLater(c, saved("x")); err != nil {
		t.Fatalf("SaveForLater: %v", err)
	}
	if err := SaveForLater(c, saved("x")); err != nil {
		t.Fatalf("SaveForLater: %v", err)
	}
	if len(c.SavedItems) != 1 {
		t.Errorf("attendu 1 article mis de côté, obtenu %d", len(c.SavedItems))
	}
}

func TestRemoveItemNotFound(t *testing.T) {
	c := &models.Cart{UserID: "u1"}
	_ = AddItem(c, item("a", 1))

	if err := RemoveItem(c, "zzz"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("attendu ErrItemNotFound, obtenu %v", err)
	}
	if len(c.Items) != 1 {
		t.Errorf("la liste ne doit pas changer quand l'id est absent")
	}
}

func TestRemoveSavedNotFound(t *testing.T) {
	c := &models.Cart{UserID: "u1"}
	_ = SaveForLater(c, saved("a"))

	if err := RemoveSaved(c, "zzz"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("attendu ErrItemNotFound, obtenu %v", err)
	}
	if len(c.SavedItems) != 1 {
		t.Errorf("la liste ne doit pas changer quand l'id est absent")
	}
}

func TestRemoveItem(t *testing.T) {
	c := &models.Cart{UserID: "u1"}
	_ = AddItem(c, item("a", 1))
	_ = AddItem(c, item("b", 2))

	if err := RemoveItem(c, "a"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].ID != "b" {
		t.Errorf("attendu [b], obtenu %+v", c.Items)
	}
}

func TestSetQuantity(t *testing.T) {
	c := &models.Cart{UserID: "u1"}
	_ = AddItem(c, item("a", 2))

	if err := SetQuantity(c, "a", 7); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if c.Items[0].Quantity != 7 {
		t.Errorf("quantité attendue 7, obtenue %d", c.Items[0].Quantity)
	}

	if err := SetQuantity(c, "a", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("quantité 0 : attendu ErrInvalidQuantity, obtenu %v", err)
	}
	if c.Items[0].Quantity != 7 {
		t.Errorf("l'article ne doit pas être modifié après un refus, quantité %d", c.Items[0].Quantity)
	}

	if err := SetQuantity(c, "zzz", 3); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("id absent : attendu ErrItemNotFound, obtenu %v", err)
	}
}

func TestClearKeepsSavedItems(t *testing.T) {
	c := &models.Cart{UserID: "u1"}
	_ = AddItem(c, item("a", 1))
	_ = SaveForLater(c, saved("b"))

	Clear(c)

	if len(c.Items) != 0 {
		t.Errorf("le panier actif doit être vide, obtenu %d articles", len(c.Items))
	}
	if len(c.SavedItems) != 1 {
		t.Errorf("les articles mis de côté doivent survivre au vidage")
	}
}

func TestMergeGuestCart(t *testing.T) {
	c := &models.Cart{UserID: "u1"}
	_ = AddItem(c, item("a", 1))

	Merge(c, []models.CartItem{item("a", 2), item("b", 3), item("bad", 0)})

	if len(c.Items) != 2 {
		t.Fatalf("attendu 2 articles, obtenu %d", len(c.Items))
	}
	if c.Items[0].ID != "a" || c.Items[0].Quantity != 3 {
		t.Errorf("article a : attendu quantité 3, obtenu %+v", c.Items[0])
	}
	if c.Items[1].ID != "b" || c.Items[1].Quantity != 3 {
		t.Errorf("article b : attendu quantité 3, obtenu %+v", c.Items[1])
	}
}

func TestTotalItems(t *testing.T) {
	c := &models.Cart{UserID: "u1"}
	_ = AddItem(c, item("a", 2))
	_ = AddItem(c, item("b", 3))

	if got := c.TotalItems(); got != 5 {
		t.Errorf("total attendu 5, obtenu %d", got)
	}
}
