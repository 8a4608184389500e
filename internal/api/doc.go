// Package api 定義對外的 HTTP 介面。
//
// 路由分成兩群：公開路由讓觀眾憑會議密碼加入與查歷史，
// 創建會議、提問、刪除這類操作則走需要主持人 token 的群組。
// WebSocket 升級點也掛在這裡，入房驗證留到 join_meeting 事件才做。
package api
