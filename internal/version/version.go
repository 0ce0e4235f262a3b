// 包 version：构建期注入的版本信息
package version

// Commit：由构建参数 -ldflags "-X ...version.Commit=<sha>" 注入
var Commit = "dev"
