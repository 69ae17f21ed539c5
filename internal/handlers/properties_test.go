package handlers

import (
	"net/http"
	"testing"

	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
	"melhado-backend/internal/testutil"
)

func TestGetPropertiesScopes(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		email string
		want  int
	}{
		{inspectorEmail, 1},
		{landlordEmail, 3},
		{adminEmail, 3},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			rec := env.do(http.MethodGet, "/api/properties", tt.email, nil)
			expectStatus(t, rec, http.StatusOK)
			var props []models.PropertyResponse
			decode(t, rec, &props)
			if len(props) != tt.want {
				t.Fatalf("got %d properties, want %d", len(props), tt.want)
			}
			for _, p := range props {
				if len(p.Rooms) == 0 {
					t.Errorf("%s listed without rooms", p.Address)
				}
			}
		})
	}
}

func TestGetPropertyOutOfScopeIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	oak := env.property(oakAve)
	main := env.property(mainSt)

	expectStatus(t, env.do(http.MethodGet, "/api/properties/"+oak.ID, inspectorEmail, nil), http.StatusNotFound)

	rec := env.do(http.MethodGet, "/api/properties/"+main.ID, inspectorEmail, nil)
	expectStatus(t, rec, http.StatusOK)
	var p models.PropertyResponse
	decode(t, rec, &p)
	if p.Address != mainSt || len(p.Rooms) != 6 {
		t.Errorf("property = %s with %d rooms", p.Address, len(p.Rooms))
	}

	expectStatus(t, env.do(http.MethodGet, "/api/properties/missing", adminEmail, nil), http.StatusNotFound)
}

func TestCreateProperty(t *testing.T) {
	env := newTestEnv(t)
	landlord := testutil.User(t, env.store, landlordEmail)
	inspector := testutil.User(t, env.store, inspectorEmail)

	t.Run("landlord owns new property with default rooms", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/properties", landlordEmail, models.CreatePropertyRequest{
			Address: "1 New Rd, Leeds LS1 1AA",
			Type:    inspection.PropertyFlat,
		})
		expectStatus(t, rec, http.StatusCreated)
		var p models.PropertyResponse
		decode(t, rec, &p)
		if p.LandlordID != landlord.ID || p.MOTStatus != models.MOTPending {
			t.Errorf("property = %+v", p)
		}
		if len(p.Rooms) != len(models.DefaultRooms) {
			t.Errorf("got %d rooms, want defaults", len(p.Rooms))
		}
	})

	t.Run("admin names landlord and inspector", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/properties", adminEmail, models.CreatePropertyRequest{
			Address:           "2 New Rd, Leeds LS1 1AA",
			Type:              inspection.PropertyHouse,
			LandlordID:        landlord.ID,
			AssignedInspector: &inspector.ID,
			Rooms:             []models.RoomRequest{{Type: inspection.RoomKitchen}, {Name: "Loft"}},
		})
		expectStatus(t, rec, http.StatusCreated)
		var p models.PropertyResponse
		decode(t, rec, &p)
		if p.AssignedInspector == nil || *p.AssignedInspector != inspector.ID {
			t.Errorf("assigned inspector = %v", p.AssignedInspector)
		}
		if p.Rooms[0].Name != "Kitchen" || p.Rooms[1].Type != inspection.RoomOther {
			t.Errorf("rooms not normalized: %+v", p.Rooms)
		}
	})

	tests := []struct {
		name  string
		email string
		req   models.CreatePropertyRequest
		want  int
	}{
		{"inspector cannot create", inspectorEmail, models.CreatePropertyRequest{Address: "x", Type: inspection.PropertyFlat}, http.StatusForbidden},
		{"missing address", landlordEmail, models.CreatePropertyRequest{Type: inspection.PropertyFlat}, http.StatusBadRequest},
		{"bad type", landlordEmail, models.CreatePropertyRequest{Address: "x", Type: "castle"}, http.StatusBadRequest},
		{"admin without landlord", adminEmail, models.CreatePropertyRequest{Address: "x", Type: inspection.PropertyFlat}, http.StatusBadRequest},
		{"landlord_id names inspector", adminEmail, models.CreatePropertyRequest{Address: "x", Type: inspection.PropertyFlat, LandlordID: inspector.ID}, http.StatusBadRequest},
		{"inspector names landlord", landlordEmail, models.CreatePropertyRequest{Address: "x", Type: inspection.PropertyFlat, AssignedInspector: &landlord.ID}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(http.MethodPost, "/api/properties", tt.email, tt.req), tt.want)
		})
	}
}

func TestUpdateProperty(t *testing.T) {
	env := newTestEnv(t)
	main := env.property(mainSt)
	path := "/api/properties/" + main.ID

	address := "123 Main Street, London SW1A 1AA"
	rec := env.do(http.MethodPatch, path, landlordEmail, models.UpdatePropertyRequest{Address: &address})
	expectStatus(t, rec, http.StatusOK)
	var p models.PropertyResponse
	decode(t, rec, &p)
	if p.Address != address || p.AssignedInspector == nil {
		t.Errorf("updated = %+v", p)
	}

	empty := ""
	rec = env.do(http.MethodPatch, path, adminEmail, models.UpdatePropertyRequest{AssignedInspector: &empty})
	expectStatus(t, rec, http.StatusOK)
	p = models.PropertyResponse{}
	decode(t, rec, &p)
	if p.AssignedInspector != nil {
		t.Errorf("inspector still assigned: %v", *p.AssignedInspector)
	}

	// Unassigned, the inspector loses sight of the property.
	expectStatus(t, env.do(http.MethodGet, path, inspectorEmail, nil), http.StatusNotFound)

	expectStatus(t, env.do(http.MethodPatch, path, landlordEmail, models.UpdatePropertyRequest{Address: &empty}), http.StatusBadRequest)
	expectStatus(t, env.do(http.MethodPatch, path, inspectorEmail, models.UpdatePropertyRequest{Address: &address}), http.StatusForbidden)
}

func TestDeleteProperty(t *testing.T) {
	env := newTestEnv(t)
	pine := env.property(pineRd)
	path := "/api/properties/" + pine.ID

	expectStatus(t, env.do(http.MethodDelete, path, landlordEmail, nil), http.StatusForbidden)
	expectStatus(t, env.do(http.MethodDelete, path, adminEmail, nil), http.StatusOK)
	expectStatus(t, env.do(http.MethodGet, path, adminEmail, nil), http.StatusNotFound)
}

func TestPropertyRooms(t *testing.T) {
	env := newTestEnv(t)
	oak := env.property(oakAve)
	path := "/api/properties/" + oak.ID + "/rooms"

	rec := env.do(http.MethodPost, path, landlordEmail, models.RoomRequest{Name: "Utility", Type: inspection.RoomOther})
	expectStatus(t, rec, http.StatusCreated)
	var room models.Room
	decode(t, rec, &room)
	if room.Name != "Utility" || room.Position != 4 {
		t.Errorf("room = %+v", room)
	}

	rec = env.do(http.MethodDelete, path+"/"+room.ID, landlordEmail, nil)
	expectStatus(t, rec, http.StatusOK)
	var resp struct {
		Success            bool `json:"success"`
		UpdatedInspections int  `json:"updated_inspections"`
	}
	decode(t, rec, &resp)
	if !resp.Success || resp.UpdatedInspections != 0 {
		t.Errorf("remove = %+v", resp)
	}

	expectStatus(t, env.do(http.MethodDelete, path+"/"+room.ID, landlordEmail, nil), http.StatusNotFound)
}
