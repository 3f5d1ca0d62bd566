package enum

// OrderStatus 表示訂單的狀態
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // 訂單已創建，等待付款
	OrderStatusPaid      OrderStatus = "paid"      // 訂單已支付
	OrderStatusFailed    OrderStatus = "failed"    // 訂單支付失敗
	OrderStatusCancelled OrderStatus = "cancelled" // 訂單取消
	OrderStatusCompleted OrderStatus = "completed" // 訂單完成，已發貨或已交付
)
