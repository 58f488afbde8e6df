package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"待处理→制作中", OrderStatusPending, OrderStatusPreparing, true},
		{"跳步 待处理→待取餐", OrderStatusPending, OrderStatusReady, true},
		{"跳步 待处理→已送达", OrderStatusPending, OrderStatusDelivered, true},
		{"制作中→待取餐", OrderStatusPreparing, OrderStatusReady, true},
		{"待取餐→已送达", OrderStatusReady, OrderStatusDelivered, true},
		{"待处理→取消", OrderStatusPending, OrderStatusCanceled, true},
		{"待取餐→取消", OrderStatusReady, OrderStatusCanceled, true},
		{"回退 待取餐→制作中", OrderStatusReady, OrderStatusPreparing, false},
		{"原地 制作中→制作中", OrderStatusPreparing, OrderStatusPreparing, false},
		{"终态 已送达→取消", OrderStatusDelivered, OrderStatusCanceled, false},
		{"终态 已取消→待处理", OrderStatusCanceled, OrderStatusPending, false},
		{"终态 已取消→已取消", OrderStatusCanceled, OrderStatusCanceled, false},
		{"未知目标状态", OrderStatusPending, "cooking", false},
		{"未知来源状态", "", OrderStatusPreparing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"无订单项", nil, OrderStatusPending},
		{"全部待处理", []string{OrderStatusPending, OrderStatusPending}, OrderStatusPending},
		{"取最慢", []string{OrderStatusReady, OrderStatusPreparing}, OrderStatusPreparing},
		{"部分送达", []string{OrderStatusDelivered, OrderStatusReady}, OrderStatusReady},
		{"全部送达", []string{OrderStatusDelivered, OrderStatusDelivered}, OrderStatusDelivered},
		{"送达+取消", []string{OrderStatusDelivered, OrderStatusCanceled}, OrderStatusDelivered},
		{"全部取消", []string{OrderStatusCanceled, OrderStatusCanceled}, OrderStatusCanceled},
		{"取消不拖慢进度", []string{OrderStatusCanceled, OrderStatusReady}, OrderStatusReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveOrderStatus(tt.statuses); got != tt.want {
				t.Errorf("DeriveOrderStatus(%v) = %q, want %q", tt.statuses, got, tt.want)
			}
		})
	}
}

func TestOrder_FoodcourtIDs(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{FoodcourtID: "b"},
		{FoodcourtID: "a"},
		{FoodcourtID: "b"},
		{FoodcourtID: "c"},
	}}

	got := order.FoodcourtIDs()
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("FoodcourtIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FoodcourtIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFoodcourt_IsOwnedBy(t *testing.T) {
	owner := "u1"
	fc := &Foodcourt{OwnerID: &owner}

	if !fc.IsOwnedBy("u1") {
		t.Error("u1 应为档口老板")
	}
	if fc.IsOwnedBy("u2") {
		t.Error("u2 不应为档口老板")
	}
	if fc.IsOwnedBy("") {
		t.Error("空用户不应匹配")
	}
	if (&Foodcourt{}).IsOwnedBy("u1") {
		t.Error("未分配档口不应匹配任何人")
	}
}
