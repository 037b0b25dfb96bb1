package domain

type DashboardMetrics struct {
	TotalUsers  int    `json:"totalUsers"`
	PaidUsers   int    `json:"paidUsers"`
	PaidRatio   string `json:"paidRatio"`
	TotalOrders int    `json:"totalOrders"`
	Revenue     Money  `json:"totalRevenue"`
}

type UserGrowthPoint struct {
	Period string `json:"period"`
	Users  int    `json:"users"`
}

type OrderAnalyticsPoint struct {
	Month  string `json:"month"`
	Orders int    `json:"orders"`
}
