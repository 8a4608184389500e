// Package middleware 提供跨路由的請求攔截。
//
// 目前只有主持人身份驗證：解析 Authorization 標頭裡的 Bearer token，
// 驗證通過才放行到主持人專屬的路由，觀眾走的公開路由不經過這裡。
package middleware
