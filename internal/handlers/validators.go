package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 子域名：全小写字母数字，3-63位
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]{3,63}$`)

// RegisterValidators 注册自定义校验规则，路由初始化时调用一次
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("subdomain", func(fl validator.FieldLevel) bool {
			return subdomainPattern.MatchString(fl.Field().String())
		})
	}
}
