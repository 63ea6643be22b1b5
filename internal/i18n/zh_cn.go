package i18n

// ZhCNMessages 简体中文消息表
// ZhCNMessages Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	"app.title":     "TaskPro",
	"stats.summary": "共 %d 项 · 已完成 %d · %d%%",
	"theme.dark":    "深色",
	"theme.light":   "浅色",

	"input.add":    "添加任务…",
	"input.date":   "截止日期 YYYY-MM-DD（可选）",
	"input.edit":   "编辑任务",
	"input.search": "搜索任务",

	"list.empty":    "暂无任务。",
	"list.no_match": "没有匹配 %q 的任务。",
	"label.done":    "已完成",
	"label.pending": "未完成",
	"label.overdue": "已逾期",

	"undo.toast":    "已删除 %q · %d 秒内可撤销",
	"undo.restored": "已恢复 %q",
	"undo.nothing":  "没有可撤销的操作",

	"status.added":          "已添加 %q",
	"status.done":           "%q 标记为已完成",
	"status.pending":        "%q 标记为未完成",
	"status.pinned":         "已置顶 %q",
	"status.edited":         "已保存 %q",
	"status.moved":          "已移动到第 %d 行",
	"status.theme":          "主题：%s",
	"status.exported":       "已导出 %s 到 %s",
	"status.copied":         "CSV 已复制到剪贴板",
	"status.search":         "筛选：%q",
	"status.search_cleared": "已清除筛选",
	"status.persist_failed": "保存失败：%v",
	"status.blank":          "任务内容不能为空",

	"error.unknown_command": "未知命令 %q，输入 help 查看帮助",
	"error.row":             "第 %s 行没有任务",
	"error.usage":           "用法：%s",
	"error.date":            "日期 %q 无效，应为 YYYY-MM-DD",
	"error.export":          "导出失败：%v",
	"error.clipboard":       "剪贴板不可用：%v",

	"repl.welcome": "TaskPro · 输入 help 查看命令",
	"repl.bye":     "再见",

	"preview.title": "打印预览",
	"preview.hint":  "esc 关闭 · ↑/↓ 滚动",

	"help.title": "命令",
}
